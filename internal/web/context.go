package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/virex/internal/core"
	webmw "github.com/JonMunkholm/virex/internal/web/middleware"
)

// WithRequestMetadata adds the client IP and User-Agent to ctx for audit logging.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	return core.ContextWithClient(ctx, webmw.ClientIP(r), r.UserAgent())
}
