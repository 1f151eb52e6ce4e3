package utils

import (
	"net/http"

	"github.com/agroconnect/agroconnect/config"
	"github.com/gin-gonic/gin"
)

// Success writes a 200 response with the given payload.
func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, data)
}

// Created writes a 201 response with the given payload.
func Created(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusCreated, data)
}

// Error writes an error response with the uniform {"error": message} body.
func Error(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"error": message})
}

// Upstream maps a datastore failure to a 500. The underlying message is
// exposed only in development; production gets the generic one.
func Upstream(ctx *gin.Context, err error, message string) {
	if Sugar != nil {
		Sugar.Errorw(message, "path", ctx.Request.URL.Path, "err", err)
	}
	if config.Get().IsDevelopment() && err != nil {
		Error(ctx, http.StatusInternalServerError, err.Error())
		return
	}
	Error(ctx, http.StatusInternalServerError, message)
}
