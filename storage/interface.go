package storage

import "github.com/MixinNetwork/plog/collector"

type Store interface {
	Close() error

	WriteMessage(m *collector.Message) error
	ReadMessage(id uint32) (*collector.Message, error)
	ListMessages(offset uint32, limit int) ([]*collector.Message, error)
}
