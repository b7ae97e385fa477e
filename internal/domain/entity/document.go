package entity

// Kind names a family of entities in the persistence store
type Kind string

const (
	KindUser          Kind = "user"
	KindMedicalRecord Kind = "medical_record"
	KindAppointment   Kind = "appointment"
	KindInventoryItem Kind = "inventory_item"
)

// Entity is a whole object addressed by its natural identifier.
// The version is managed by the store and used for optimistic concurrency.
type Entity interface {
	EntityKind() Kind
	EntityID() string
	GetVersion() int64
	SetVersion(v int64)
}

// Versioned is embedded by every stored entity
type Versioned struct {
	Version int64 `json:"-"`
}

func (v *Versioned) GetVersion() int64 {
	return v.Version
}

func (v *Versioned) SetVersion(version int64) {
	v.Version = version
}
