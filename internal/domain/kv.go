package domain

import "time"

// KVRecord is the GORM model backing the durable key/value cache tier when
// SQLite is the store. The engine only ever reads and writes whole values;
// no relational structure is needed beyond the primary key.
type KVRecord struct {
	Key       string    `json:"key"        gorm:"type:varchar(255);primaryKey"`
	Value     []byte    `json:"value"      gorm:"type:blob;not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for KVRecord.
func (KVRecord) TableName() string { return "kv_entries" }
