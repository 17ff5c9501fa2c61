package main

import (
	"context"
	"fmt"

	"github.com/danthegoodman1/tablemap/crdb"
	"github.com/danthegoodman1/tablemap/datastore"
	"github.com/danthegoodman1/tablemap/metastore"
)

type (
	Stores struct {
		MetaStore metastore.MetaStore
		DataStore datastore.DataStore
	}
)

func NewStores(ms metastore.MetaStore, ds datastore.DataStore) *Stores {
	return &Stores{
		MetaStore: ms,
		DataStore: ds,
	}
}

// NewStoresFromEnv uses the CRDB pool for the metastore and the datastore named by DATASTORE
func NewStoresFromEnv() (*Stores, error) {
	ds, err := datastore.NewDataStoreFromEnv()
	if err != nil {
		return nil, fmt.Errorf("error in NewDataStoreFromEnv: %w", err)
	}
	ms := metastore.NewCRDBMetaStore(crdb.PGPool, crdb.StandardContextTimeout)
	return NewStores(ms, ds), nil
}

func (st *Stores) Shutdown(ctx context.Context) error {
	if err := st.DataStore.Shutdown(ctx); err != nil {
		return fmt.Errorf("error in DataStore.Shutdown: %w", err)
	}
	if err := st.MetaStore.Shutdown(ctx); err != nil {
		return fmt.Errorf("error in MetaStore.Shutdown: %w", err)
	}
	return nil
}
