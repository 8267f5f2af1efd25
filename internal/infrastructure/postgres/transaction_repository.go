package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Taller-api/internal/domain"
	"github.com/jhoicas/Taller-api/internal/domain/entity"
	"github.com/jhoicas/Taller-api/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo persistencia de transacciones del ledger sobre PostgreSQL
// (usable con pool o tx). El índice único parcial sobre (kind, reference) para
// deducciones completadas respalda la idempotencia ante carreras.
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

// Create persiste la transacción. Una violación del índice único de idempotencia
// se devuelve como domain.ErrDuplicate para que el motor resuelva la carrera.
func (r *TransactionRepo) Create(tx *entity.Transaction) error {
	query := `
		INSERT INTO transactions (id, kind, reference, notes, status, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	createdBy := (*string)(nil)
	if tx.CreatedBy != "" {
		createdBy = &tx.CreatedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		tx.ID, tx.Kind, tx.Reference, tx.Notes, tx.Status, tx.CreatedAt, createdBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

// CreateLineItem persiste una línea de la transacción.
func (r *TransactionRepo) CreateLineItem(item *entity.LineItem) error {
	query := `
		INSERT INTO line_items (id, transaction_id, material_id, delta)
		VALUES ($1, $2, $3, $4)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.TransactionID, item.MaterialID, item.Delta,
	)
	if err != nil {
		return fmt.Errorf("create line item: %w", err)
	}
	return nil
}

const transactionColumns = `id, kind, reference, notes, status, created_at, created_by`

// GetByID obtiene una transacción por ID.
func (r *TransactionRepo) GetByID(id string) (*entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	tx, err := scanTransaction(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

// GetCompletedByKindAndReference busca una transacción completada con la misma
// (kind, reference): la consulta de idempotencia de las deducciones de producción.
func (r *TransactionRepo) GetCompletedByKindAndReference(kind, reference string) (*entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE kind = $1 AND reference = $2 AND status = $3
		ORDER BY created_at LIMIT 1`
	tx, err := scanTransaction(r.q.QueryRow(context.Background(), query, kind, reference, entity.TransactionStatusCompleted))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction by reference: %w", err)
	}
	return tx, nil
}

// ListLineItems lista las líneas de una transacción.
func (r *TransactionRepo) ListLineItems(transactionID string) ([]*entity.LineItem, error) {
	query := `
		SELECT id, transaction_id, material_id, delta
		FROM line_items WHERE transaction_id = $1
		ORDER BY material_id`
	rows, err := r.q.Query(context.Background(), query, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list line items: %w", err)
	}
	defer rows.Close()

	var list []*entity.LineItem
	for rows.Next() {
		var it entity.LineItem
		if err := rows.Scan(&it.ID, &it.TransactionID, &it.MaterialID, &it.Delta); err != nil {
			return nil, fmt.Errorf("scan line item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// ListByKind lista transacciones de un tipo, más recientes primero (paginado).
func (r *TransactionRepo) ListByKind(kind string, limit, offset int) ([]*entity.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions WHERE kind = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, kind, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var list []*entity.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, tx)
	}
	return list, rows.Err()
}

func scanTransaction(row pgx.Row) (*entity.Transaction, error) {
	var tx entity.Transaction
	var createdBy *string
	err := row.Scan(&tx.ID, &tx.Kind, &tx.Reference, &tx.Notes, &tx.Status, &tx.CreatedAt, &createdBy)
	if err != nil {
		return nil, err
	}
	if createdBy != nil {
		tx.CreatedBy = *createdBy
	}
	return &tx, nil
}
