package simpletxmanager

import (
	"database/sql"

	"github.com/m04kA/SMC-BarberService/pkg/dbmetrics"
	"github.com/m04kA/SMC-BarberService/pkg/txmanager"
)

// NewTransactionManager создает менеджер транзакций поверх *sql.DB без сбора метрик
func NewTransactionManager(db *sql.DB) *txmanager.TransactionManager {
	return txmanager.NewTransactionManager(dbmetrics.PlainDB{DB: db})
}
