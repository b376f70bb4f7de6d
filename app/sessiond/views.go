package sessiond

import (
	"time"

	"github.com/dmitrymomot/sessiontrack/core/session"
)

// DisplayLayout renders timestamps at the HTTP boundary.
const DisplayLayout = "2006-01-02 15:04:05 MST"

type sessionView struct {
	SessionID    string `json:"sessionId"`
	Email        string `json:"email"`
	Nickname     string `json:"nickname"`
	MacAddress   string `json:"macAddress"`
	ClientIP     string `json:"clientIp"`
	ServerIP     string `json:"serverIp"`
	ServerMac    string `json:"serverMac"`
	CreatedAt    string `json:"createdAt"`
	LastAccessed string `json:"lastAccessed"`
	InactiveTime int64  `json:"inactiveTime"`
	Status       string `json:"status"`

	// Set only by status checks, in whole seconds.
	Duration   *int64 `json:"duration,omitempty"`
	Inactivity *int64 `json:"inactivity,omitempty"`
}

type presenter struct {
	loc *time.Location
}

func (p presenter) record(rec session.Record) sessionView {
	return sessionView{
		SessionID:    rec.SessionID,
		Email:        rec.Identity.Email,
		Nickname:     rec.Identity.Nickname,
		MacAddress:   rec.DeviceFingerprint,
		ClientIP:     rec.ClientAddress,
		ServerIP:     rec.Server.Address,
		ServerMac:    rec.Server.Hardware,
		CreatedAt:    p.format(rec.CreatedAt),
		LastAccessed: p.format(rec.LastAccessed),
		InactiveTime: rec.InactiveSeconds,
		Status:       rec.Status.String(),
	}
}

func (p presenter) snapshot(snap session.Snapshot) sessionView {
	v := p.record(snap.Record)
	duration := int64(snap.Duration / time.Second)
	inactivity := int64(snap.Inactivity / time.Second)
	v.Duration = &duration
	v.Inactivity = &inactivity
	return v
}

func (p presenter) records(recs []session.Record) []sessionView {
	out := make([]sessionView, 0, len(recs))
	for _, rec := range recs {
		out = append(out, p.record(rec))
	}
	return out
}

func (p presenter) format(t time.Time) string {
	return t.In(p.loc).Format(DisplayLayout)
}

type messageResponse struct {
	Message   string       `json:"message"`
	SessionID string       `json:"sessionId,omitempty"`
	Session   *sessionView `json:"session,omitempty"`
}

type listResponse struct {
	Count    int           `json:"count"`
	Sessions []sessionView `json:"sessions"`
}

type purgeResponse struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}

type welcomeResponse struct {
	Message string `json:"message"`
	Service string `json:"service"`
	Version string `json:"version"`
}
