package httpserver

import (
	"context"
	"io"
	"net/http"

	"github.com/identinet/did-web-server/internal/server/apiv1"
	"github.com/identinet/did-web-server/pkg/helpers"
	"github.com/identinet/did-web-server/pkg/httphelpers"

	"github.com/gin-gonic/gin"
)

// maxPresentationSize bounds the request body of a mutation
const maxPresentationSize = 1 << 20

func (s *Service) endpointHealth(ctx context.Context, c *gin.Context) (any, error) {
	return gin.H{"status": "STATUS_OK_didwebserver"}, nil
}

// endpointDID dispatches document requests, every path that names a
// did.json file at any depth.
func (s *Service) endpointDID(ctx context.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		// a cancelled request must not commit, the engine checks the
		// request context before every store write
		ctx, span := s.tracer.Start(c.Request.Context(), "api_endpoint "+c.Request.Method+":did")
		defer span.End()

		var (
			res    any
			err    error
			status = http.StatusOK
		)

		path := c.Request.URL.Path

		switch c.Request.Method {
		case http.MethodGet:
			if _, ok := c.GetQuery("proofParameters"); ok {
				res, err = s.apiv1.ProofParameters(ctx, &apiv1.ProofParametersRequest{Path: path})
			} else {
				res, err = s.apiv1.Get(ctx, &apiv1.GetRequest{Path: path})
			}
		case http.MethodPost:
			status = http.StatusCreated
			var body []byte
			body, err = readBody(c)
			if err == nil {
				res, err = s.apiv1.Create(ctx, &apiv1.CreateRequest{Path: path, Presentation: body})
			}
		case http.MethodPut:
			var body []byte
			body, err = readBody(c)
			if err == nil {
				res, err = s.apiv1.Update(ctx, &apiv1.UpdateRequest{Path: path, Presentation: body})
			}
		case http.MethodDelete:
			var body []byte
			body, err = readBody(c)
			if err == nil {
				res, err = s.apiv1.Delete(ctx, &apiv1.DeleteRequest{Path: path, Presentation: body})
			}
		default:
			c.JSON(http.StatusMethodNotAllowed, gin.H{"error": helpers.NewError("method_not_allowed")})
			return
		}

		if err != nil {
			s.log.Debug("endpointDID", "err", err)
			statusCode := httphelpers.StatusCode(ctx, err)
			s.httpHelpers.Rendering.Error(ctx, c, statusCode, err)
			return
		}

		s.httpHelpers.Rendering.Content(ctx, c, status, res)
	}
}

func readBody(c *gin.Context) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPresentationSize))
	if err != nil {
		return nil, helpers.NewErrorDetails(helpers.ErrContentConversion.Title, err.Error())
	}
	return body, nil
}
