package storage

import (
	"time"

	"github.com/MixinNetwork/plog/logger"
	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
)

type BadgerStore struct {
	messagesDB *badger.DB
}

func NewBadgerStore(dir string, log *logger.Logger) (*BadgerStore, error) {
	if log == nil {
		log = logger.Discard()
	}
	messagesDB, err := openDB(dir+"/messages", log)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{messagesDB: messagesDB}, nil
}

func (store *BadgerStore) Close() error {
	return store.messagesDB.Close()
}

func openDB(dir string, log *logger.Logger) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir)
	opts = opts.WithSyncWrites(false)
	// payloads are zstd compressed already
	opts = opts.WithCompression(options.None)
	opts = opts.WithBlockCacheSize(0)
	opts = opts.WithIndexCacheSize(0)
	opts = opts.WithLoggingLevel(badger.WARNING)
	opts = opts.WithNumVersionsToKeep(1)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	go func() {
		for {
			time.Sleep(5 * time.Minute)
			if db.IsClosed() {
				return
			}
			lsm, vlog := db.Size()
			log.Verbosef("Badger LSM %d VLOG %d\n", lsm, vlog)
			if lsm > 1024*1024*8 || vlog > 1024*1024*32 {
				err := db.RunValueLogGC(0.5)
				log.Verbosef("Badger RunValueLogGC %v\n", err)
			}
		}
	}()

	return db, nil
}
