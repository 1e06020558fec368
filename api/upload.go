package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Amo12312/accordai/middleware"
	"github.com/Amo12312/accordai/utils"
)

// UploadHandler accepts a multipart file plus an optional custom prompt,
// extracts its text and routes it through the same gateway path as a
// typed message (trial gate included). Works for both authenticated
// users and guests.
func (h *APIHandler) UploadHandler(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		var err error
		user, err = h.getOrCreateGuest(c.PostForm("guest_user_id"))
		if err != nil {
			utils.SendJSONError(c, http.StatusInternalServerError, "", err)
			return
		}
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "A file is required", err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "", err)
		return
	}
	defer file.Close()

	result, doc, err := h.extractService.HandleUpload(
		c.Request.Context(),
		user,
		fileHeader.Filename,
		file,
		c.PostForm("prompt"),
	)
	if err != nil {
		if doc == nil {
			// Extraction itself failed: a client-side problem (format,
			// size, empty file).
			utils.SendJSONError(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		respondGatewayError(c, err)
		return
	}

	response := gin.H{
		"success":   true,
		"response":  result.Response,
		"source":    result.Source,
		"timestamp": result.Timestamp,
		"extracted": doc.Metadata,
	}
	if user.IsGuest {
		response["guestUserId"] = user.ID
	}
	c.JSON(http.StatusOK, response)
}
