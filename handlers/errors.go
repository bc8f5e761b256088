package handlers

import (
	"log"
	"net/http"

	"catfish/services"

	"github.com/gin-gonic/gin"
)

// statusForCode maps the service error taxonomy onto status classes:
// not-found 404, not-authorised 403, bad credential 401, everything
// conflict/precondition shaped 409.
var statusForCode = map[string]int{
	"GAME_NOT_FOUND":          http.StatusNotFound,
	"NOT_AUTHORISED":          http.StatusForbidden,
	"NOT_HOST":                http.StatusForbidden,
	"INVALID_CREDENTIALS":     http.StatusUnauthorized,
	"GAME_ALREADY_STARTED":    http.StatusConflict,
	"ALREADY_IN_GAME":         http.StatusConflict,
	"GAME_FULL":               http.StatusConflict,
	"CODE_GENERATION_FAILED":  http.StatusConflict,
	"INSUFFICIENT_PLAYERS":    http.StatusConflict,
	"INSUFFICIENT_PROMPTS":    http.StatusConflict,
	"GAME_NOT_STARTED":        http.StatusConflict,
	"GAME_ALREADY_FINISHED":   http.StatusConflict,
	"GAME_NOT_PLAYING":        http.StatusConflict,
	"NOT_A_PROMPT_STEP":       http.StatusConflict,
	"NOT_AN_ANSWERER":         http.StatusConflict,
	"ALREADY_SUBMITTED":       http.StatusConflict,
	"USERNAME_TAKEN":          http.StatusConflict,
}

// respondError surfaces expected error kinds verbatim as their code and
// hides everything else behind a generic 500 after logging it with
// operation context.
func respondError(c *gin.Context, operation string, err error) {
	if code, ok := services.ErrorCode(err); ok {
		status, known := statusForCode[code]
		if !known {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": code})
		return
	}

	log.Printf("%s: unexpected error: %v", operation, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "An unexpected error occurred"})
}
