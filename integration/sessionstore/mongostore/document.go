package mongostore

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/sessiontrack/core/session"
)

// document is the stored shape of a session. Field names follow the
// sessions collection of earlier deployments, but status holds the English
// names of session.Status. Documents written with the old Spanish status
// values ("Activa", "Finalizada") are not recognized and must be migrated.
type document struct {
	SessionID    string    `bson:"sessionId"`
	Email        string    `bson:"email"`
	Nickname     string    `bson:"nickname"`
	MacAddress   string    `bson:"macAddress"`
	ClientIP     string    `bson:"clientIp"`
	ServerIP     string    `bson:"serverIp"`
	ServerMac    string    `bson:"serverMac"`
	CreatedAt    time.Time `bson:"createdAt"`
	LastAccessed time.Time `bson:"lastAccessed"`
	InactiveTime int64     `bson:"inactiveTime"`
	Status       string    `bson:"status"`
}

func fromRecord(rec session.Record) document {
	return document{
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
	}
}

func (d document) record() session.Record {
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
	}
}

func filterDoc(f session.Filter) bson.D {
	doc := bson.D{}
	if f.SessionID != "" {
		doc = append(doc, bson.E{Key: "sessionId", Value: f.SessionID})
	}
	if f.Identity != nil {
		doc = append(doc,
			bson.E{Key: "email", Value: f.Identity.Email},
			bson.E{Key: "nickname", Value: f.Identity.Nickname},
		)
	}
	if f.Status != "" {
		doc = append(doc, bson.E{Key: "status", Value: f.Status.String()})
	}
	return doc
}

func setDoc(p session.Patch) bson.D {
	set := bson.D{}
	if p.Email != nil {
		set = append(set, bson.E{Key: "email", Value: *p.Email})
	}
	if p.Nickname != nil {
		set = append(set, bson.E{Key: "nickname", Value: *p.Nickname})
	}
	if p.LastAccessed != nil {
		set = append(set, bson.E{Key: "lastAccessed", Value: *p.LastAccessed})
	}
	if p.InactiveSeconds != nil {
		set = append(set, bson.E{Key: "inactiveTime", Value: *p.InactiveSeconds})
	}
	if p.Status != nil {
		set = append(set, bson.E{Key: "status", Value: p.Status.String()})
	}
	return set
}
