package httpserver

import (
	"context"

	"github.com/identinet/did-web-server/internal/server/apiv1"
	"github.com/identinet/did-web-server/pkg/model"
)

// Apiv1 interface
type Apiv1 interface {
	Get(ctx context.Context, req *apiv1.GetRequest) (*model.Document, error)
	ProofParameters(ctx context.Context, req *apiv1.ProofParametersRequest) (*model.ProofParameters, error)
	Create(ctx context.Context, req *apiv1.CreateRequest) (*model.ProofParameters, error)
	Update(ctx context.Context, req *apiv1.UpdateRequest) (*model.ProofParameters, error)
	Delete(ctx context.Context, req *apiv1.DeleteRequest) (*model.ProofParameters, error)
}
