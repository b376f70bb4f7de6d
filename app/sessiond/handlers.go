package sessiond

import (
	"log/slog"

	"github.com/dmitrymomot/sessiontrack/core/handler"
	"github.com/dmitrymomot/sessiontrack/core/logger"
	"github.com/dmitrymomot/sessiontrack/core/response"
	"github.com/dmitrymomot/sessiontrack/core/session"
)

type loginRequest struct {
	Email      string `json:"email" form:"email"`
	Nickname   string `json:"nickname" form:"nickname"`
	MacAddress string `json:"macAddress" form:"macAddress"`
}

type sessionRequest struct {
	SessionID string `json:"sessionId" form:"sessionId" query:"sessionId"`
}

type updateRequest struct {
	SessionID string `json:"sessionId" form:"sessionId" query:"sessionId"`
	Email     string `json:"email" form:"email"`
	Nickname  string `json:"nickname" form:"nickname"`
}

// handlers maps HTTP requests onto registry operations.
type handlers struct {
	registry   *session.Registry
	present    presenter
	log        *slog.Logger
	name       string
	allowPurge bool
}

func fail(err error) handler.Response {
	return response.Error(httpError(err))
}

func (h *handlers) welcome(ctx *Context) handler.Response {
	return response.JSON(welcomeResponse{
		Message: "session tracking api",
		Service: h.name,
		Version: Version,
	})
}

func (h *handlers) login(ctx *Context) handler.Response {
	var req loginRequest
	if err := ctx.BindBody(&req); err != nil {
		return fail(err)
	}

	res, err := h.registry.Login(ctx, session.LoginParams{
		Identity:          session.Identity{Email: req.Email, Nickname: req.Nickname},
		DeviceFingerprint: req.MacAddress,
		ClientAddress:     ctx.ClientIP(),
	})
	if err != nil {
		return fail(err)
	}

	msg := "session started"
	if res.Reactivated {
		msg = "session reactivated"
	}
	h.log.InfoContext(ctx, msg,
		logger.Event("login"),
		logger.SessionID(res.Record.SessionID),
		logger.ClientIP(res.Record.ClientAddress),
	)
	return response.NoStore(response.JSON(messageResponse{Message: msg, SessionID: res.Record.SessionID}))
}

func (h *handlers) logout(ctx *Context) handler.Response {
	var req sessionRequest
	if err := ctx.Bind(&req); err != nil {
		return fail(err)
	}
	if err := h.registry.Logout(ctx, req.SessionID); err != nil {
		return fail(err)
	}
	h.log.InfoContext(ctx, "session logged out", logger.Event("logout"), logger.SessionID(req.SessionID))
	return response.NoStore(response.JSON(messageResponse{Message: "logged out", SessionID: req.SessionID}))
}

func (h *handlers) update(ctx *Context) handler.Response {
	var req updateRequest
	if err := ctx.Bind(&req); err != nil {
		return fail(err)
	}
	rec, err := h.registry.Update(ctx, req.SessionID, session.UpdateParams{Email: req.Email, Nickname: req.Nickname})
	if err != nil {
		return fail(err)
	}
	view := h.present.record(rec)
	return response.NoStore(response.JSON(messageResponse{Message: "session updated", SessionID: rec.SessionID, Session: &view}))
}

func (h *handlers) status(ctx *Context) handler.Response {
	var req sessionRequest
	if err := ctx.BindQuery(&req); err != nil {
		return fail(err)
	}
	snap, err := h.registry.Status(ctx, req.SessionID)
	if err != nil {
		return fail(err)
	}
	view := h.present.snapshot(snap)
	return response.NoStore(response.JSON(messageResponse{Message: "session active", SessionID: snap.SessionID, Session: &view}))
}

func (h *handlers) listAll(ctx *Context) handler.Response {
	recs, err := h.registry.ListAll(ctx)
	if err != nil {
		return fail(err)
	}
	return response.NoStore(response.JSON(listResponse{Count: len(recs), Sessions: h.present.records(recs)}))
}

func (h *handlers) listActive(ctx *Context) handler.Response {
	recs, err := h.registry.ListActive(ctx)
	if err != nil {
		return fail(err)
	}
	return response.NoStore(response.JSON(listResponse{Count: len(recs), Sessions: h.present.records(recs)}))
}

func (h *handlers) terminate(ctx *Context) handler.Response {
	var req sessionRequest
	if err := ctx.Bind(&req); err != nil {
		return fail(err)
	}
	if err := h.registry.Terminate(ctx, req.SessionID); err != nil {
		return fail(err)
	}
	h.log.WarnContext(ctx, "session terminated", logger.Event("terminate"), logger.SessionID(req.SessionID))
	return response.NoStore(response.JSON(messageResponse{Message: "session terminated", SessionID: req.SessionID}))
}

func (h *handlers) purge(ctx *Context) handler.Response {
	if !h.allowPurge {
		return fail(ErrPurgeDisabled)
	}
	n, err := h.registry.PurgeAll(ctx)
	if err != nil {
		return fail(err)
	}
	h.log.WarnContext(ctx, "sessions purged", logger.Event("purge"), logger.Count("deleted", n))
	return response.NoStore(response.JSON(purgeResponse{Message: "sessions purged", Deleted: n}))
}
