package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// GuestMarker is the literal some clients send instead of a user id for anonymous orders.
const GuestMarker = "guest"

// Owner identifies who placed an order: a registered user or a guest.
// The zero value is Guest.
type Owner struct {
	userID string
}

func Registered(userID string) Owner {
	if userID == GuestMarker {
		return Guest()
	}
	return Owner{userID: userID}
}

func Guest() Owner {
	return Owner{}
}

func (o Owner) IsGuest() bool {
	return o.userID == ""
}

// UserID returns the registered user id and false for guests.
func (o Owner) UserID() (string, bool) {
	return o.userID, o.userID != ""
}

func (o Owner) String() string {
	if o.IsGuest() {
		return GuestMarker
	}
	return o.userID
}

func (o Owner) MarshalJSON() ([]byte, error) {
	if o.IsGuest() {
		return []byte("null"), nil
	}
	return json.Marshal(o.userID)
}

func (o *Owner) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Guest()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("owner must be a string or null: %w", err)
	}
	*o = Registered(s)
	return nil
}

func (o Owner) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if o.IsGuest() {
		return bsontype.Null, nil, nil
	}
	return bson.MarshalValue(o.userID)
}

func (o *Owner) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*o = Guest()
		return nil
	case bsontype.String:
		s, ok := bson.RawValue{Type: t, Value: data}.StringValueOK()
		if !ok {
			return fmt.Errorf("owner: malformed string value")
		}
		*o = Registered(s)
		return nil
	default:
		return fmt.Errorf("owner: unsupported bson type %s", t)
	}
}
