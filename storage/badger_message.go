package storage

import (
	"encoding/binary"
	"time"

	"github.com/MixinNetwork/plog/collector"
	"github.com/dgraph-io/badger/v3"
)

const graphPrefixMessage = "MESSAGE"

// message ids wrap and restart randomly with each client session, a newer
// message overwrites an older one with the same id.
type messageRecord struct {
	Id         uint32
	Checksum   uint32
	Tags       []string
	Data       []byte
	ReceivedAt int64
}

func (s *BadgerStore) WriteMessage(m *collector.Message) error {
	val, err := msgpackMarshal(&messageRecord{
		Id:         m.Id,
		Checksum:   m.Checksum,
		Tags:       m.Tags,
		Data:       compress(m.Data),
		ReceivedAt: m.ReceivedAt.UnixNano(),
	})
	if err != nil {
		return err
	}

	txn := s.messagesDB.NewTransaction(true)
	defer txn.Discard()

	err = txn.Set(messageKey(m.Id), val)
	if err != nil {
		return err
	}
	return txn.Commit()
}

func (s *BadgerStore) ReadMessage(id uint32) (*collector.Message, error) {
	txn := s.messagesDB.NewTransaction(false)
	defer txn.Discard()

	item, err := txn.Get(messageKey(id))
	if err == badger.ErrKeyNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	return decodeMessage(val)
}

func (s *BadgerStore) ListMessages(offset uint32, limit int) ([]*collector.Message, error) {
	txn := s.messagesDB.NewTransaction(false)
	defer txn.Discard()

	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	var messages []*collector.Message
	prefix := []byte(graphPrefixMessage)
	for it.Seek(messageKey(offset)); it.ValidForPrefix(prefix) && len(messages) < limit; it.Next() {
		val, err := it.Item().ValueCopy(nil)
		if err != nil {
			return nil, err
		}
		m, err := decodeMessage(val)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, nil
}

func decodeMessage(val []byte) (*collector.Message, error) {
	var r messageRecord
	err := msgpackUnmarshal(val, &r)
	if err != nil {
		return nil, err
	}
	data, err := decompress(r.Data)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []byte{}
	}
	return &collector.Message{
		Id:         r.Id,
		Checksum:   r.Checksum,
		Tags:       r.Tags,
		Data:       data,
		ReceivedAt: time.Unix(0, r.ReceivedAt),
	}, nil
}

func messageKey(id uint32) []byte {
	key := make([]byte, len(graphPrefixMessage)+4)
	copy(key, graphPrefixMessage)
	binary.BigEndian.PutUint32(key[len(graphPrefixMessage):], id)
	return key
}
