package cart

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"go-course-client/internal/gateway"
	"go-course-client/internal/intent"
	"go-course-client/internal/session"
)

// Remote binds the intent store's reconciliation surface to the cart
// endpoints. The backend is an opaque REST collaborator; nothing here
// assumes anything about its storage.
type Remote struct {
	gw *gateway.Client
}

func NewRemote(gw *gateway.Client) *Remote {
	return &Remote{gw: gw}
}

// NewStore builds a cart intent store wired to the gateway.
func NewStore(gw *gateway.Client, tokens session.TokenSource, logger *zap.Logger) *intent.Store {
	return intent.NewStore("cart", NewRemote(gw), tokens, logger)
}

func (r *Remote) List(ctx context.Context) ([]string, error) {
	var out listResponse
	if err := r.gw.GetAuthed(ctx, "/cart", &out); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(out.Items))
	for _, item := range out.Items {
		ids = append(ids, item.CourseID)
	}
	return ids, nil
}

func (r *Remote) Add(ctx context.Context, courseID string) error {
	if courseID == "" {
		return ErrInvalidCourseID
	}
	return r.gw.Post(ctx, "/cart/add", addRequest{CourseID: courseID}, nil)
}

func (r *Remote) Remove(ctx context.Context, courseID string) error {
	if courseID == "" {
		return ErrInvalidCourseID
	}
	return r.gw.Delete(ctx, "/cart/remove/"+url.PathEscape(courseID), nil)
}

func (r *Remote) Clear(ctx context.Context) error {
	return r.gw.Delete(ctx, "/cart/clear", nil)
}
