package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/vedion/refurbed-sync/api/responses"
	"github.com/vedion/refurbed-sync/internal/refurbed"
	pkgerrors "github.com/vedion/refurbed-sync/pkg/errors"
	"github.com/vedion/refurbed-sync/pkg/logger"
)

// FetchService is the fetch engine surface the trigger endpoints use.
type FetchService interface {
	Incremental(ctx context.Context) (int, error)
	Latest(ctx context.Context, n int) ([]refurbed.Order, error)
	Selected(ctx context.Context, ids []string) ([]refurbed.Order, error)
	RecoverMissing(ctx context.Context) (int, error)
	RefreshStates(ctx context.Context) (int, error)
}

// PushService pushes checked rows to the ERP.
type PushService interface {
	PushAll(ctx context.Context) (int, error)
}

// ReconcileService settles terminal ERP orders.
type ReconcileService interface {
	Reconcile(ctx context.Context) (int, error)
}

// ArchiveService moves terminal rows off the working sheet.
type ArchiveService interface {
	Archive(ctx context.Context) (int, error)
}

// SyncFetch triggers one incremental fetch pass.
func SyncFetch(svc FetchService, logg *logger.Logger) http.HandlerFunc {
	return countHandler(logg, "appended", svc.Incremental)
}

// SyncFetchLatest returns the newest orders without touching the sheet.
// The optional limit query parameter caps the page size.
func SyncFetchLatest(svc FetchService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		limit := refurbed.MaxPageSize
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer"))
				return
			}
			limit = parsed
		}
		orders, err := svc.Latest(ctx, limit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"orders": orders})
	}
}

// SyncFetchSelected returns full detail for a comma-separated id list.
func SyncFetchSelected(svc FetchService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		raw := r.URL.Query().Get("ids")
		if raw == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "ids query parameter required"))
			return
		}
		var ids []string
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
		orders, err := svc.Selected(ctx, ids)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"orders": orders})
	}
}

// SyncRecover triggers one missing-order recovery pass.
func SyncRecover(svc FetchService, logg *logger.Logger) http.HandlerFunc {
	return countHandler(logg, "recovered", svc.RecoverMissing)
}

// SyncRefreshStates triggers one state refresh pass.
func SyncRefreshStates(svc FetchService, logg *logger.Logger) http.HandlerFunc {
	return countHandler(logg, "updated", svc.RefreshStates)
}

// SyncPush triggers one push pass.
func SyncPush(svc PushService, logg *logger.Logger) http.HandlerFunc {
	return countHandler(logg, "pushed", svc.PushAll)
}

// SyncReconcile triggers one reconciliation pass.
func SyncReconcile(svc ReconcileService, logg *logger.Logger) http.HandlerFunc {
	return countHandler(logg, "settled", svc.Reconcile)
}

// SyncArchive triggers one archive pass.
func SyncArchive(svc ArchiveService, logg *logger.Logger) http.HandlerFunc {
	return countHandler(logg, "archived", svc.Archive)
}

func countHandler(logg *logger.Logger, key string, run func(ctx context.Context) (int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		count, err := run(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int{key: count})
	}
}
