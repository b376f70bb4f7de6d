package redisstore

import (
	"encoding/json"
	"time"

	"github.com/dmitrymomot/sessiontrack/core/session"
)

// DefaultPrefix namespaces every key written by the store and the locker.
const DefaultPrefix = "sessiontrack:"

type keys struct {
	prefix string
}

func (k keys) record(id string) string { return k.prefix + "session:" + id }

func (k keys) active(id session.Identity) string { return k.prefix + "active:" + id.Key() }

func (k keys) order() string { return k.prefix + "sessions" }

func (k keys) lock(name string) string { return k.prefix + "lock:" + name }

// document mirrors the field names of the Mongo collection.
type document struct {
	SessionID    string    `json:"sessionId"`
	Email        string    `json:"email"`
	Nickname     string    `json:"nickname"`
	MacAddress   string    `json:"macAddress"`
	ClientIP     string    `json:"clientIp"`
	ServerIP     string    `json:"serverIp"`
	ServerMac    string    `json:"serverMac"`
	CreatedAt    time.Time `json:"createdAt"`
	LastAccessed time.Time `json:"lastAccessed"`
	InactiveTime int64     `json:"inactiveTime"`
	Status       string    `json:"status"`
}

func encode(rec session.Record) ([]byte, error) {
	return json.Marshal(document{
		SessionID:    rec.SessionID,
		Email:        rec.Identity.Email,
		Nickname:     rec.Identity.Nickname,
		MacAddress:   rec.DeviceFingerprint,
		ClientIP:     rec.ClientAddress,
		ServerIP:     rec.Server.Address,
		ServerMac:    rec.Server.Hardware,
		CreatedAt:    rec.CreatedAt,
		LastAccessed: rec.LastAccessed,
		InactiveTime: rec.InactiveSeconds,
		Status:       rec.Status.String(),
	})
}

func decode(raw []byte) (session.Record, error) {
	var d document
	if err := json.Unmarshal(raw, &d); err != nil {
		return session.Record{}, err
	}
	return session.Record{
		SessionID:         d.SessionID,
		Identity:          session.Identity{Email: d.Email, Nickname: d.Nickname},
		DeviceFingerprint: d.MacAddress,
		ClientAddress:     d.ClientIP,
		Server:            session.ServerInfo{Address: d.ServerIP, Hardware: d.ServerMac},
		CreatedAt:         d.CreatedAt.UTC(),
		LastAccessed:      d.LastAccessed.UTC(),
		InactiveSeconds:   d.InactiveTime,
		Status:            session.Status(d.Status),
	}, nil
}
