package httphelpers

import (
	"context"
	"net/http"

	"github.com/identinet/did-web-server/pkg/helpers"
	"github.com/identinet/did-web-server/pkg/logger"
	"github.com/identinet/did-web-server/pkg/model"

	"github.com/gin-gonic/gin"
)

// ContentTypeDIDLDJSON is the media type of a DID Document response
const ContentTypeDIDLDJSON = "application/did+ld+json"

type renderingHandler struct {
	client *Client
	log    *logger.Log
}

// Content renders a success body. DID Documents are emitted as
// application/did+ld+json, everything else as application/json.
func (r *renderingHandler) Content(ctx context.Context, c *gin.Context, code int, data any) {
	if doc, ok := data.(*model.Document); ok {
		r.Document(ctx, c, code, doc)
		return
	}

	c.JSON(code, data)
}

// Document renders a DID Document with its dedicated media type
func (r *renderingHandler) Document(ctx context.Context, c *gin.Context, code int, doc *model.Document) {
	c.Header("Content-Type", ContentTypeDIDLDJSON)
	c.JSON(code, doc)
}

// Error renders an error body as application/json
func (r *renderingHandler) Error(ctx context.Context, c *gin.Context, code int, err error) {
	c.Header("Content-Type", gin.MIMEJSON)
	c.JSON(code, helpers.ErrorResponse{Error: helpers.NewErrorFromError(err)})
}

// NoContent renders an empty body
func (r *renderingHandler) NoContent(ctx context.Context, c *gin.Context) {
	c.Status(http.StatusNoContent)
}
