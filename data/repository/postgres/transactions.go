package postgres

import (
	"context"

	"github.com/KotFed0t/portfolio_tracker/internal/converter/dbConverter"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/model/dbModel"
	"github.com/jmoiron/sqlx"
)

const transactionColumns = `transaction_id, portfolio_id, asset_id, user_id, symbol, type, quantity, price,
		total_amount, fees, dt_transaction, is_active, dt_create`

func (r *Postgres) InsertTransaction(ctx context.Context, tx model.Transaction) (inserted model.Transaction, err error) {
	op := "Postgres.InsertTransaction"
	query := `
		INSERT INTO transactions(portfolio_id, asset_id, user_id, symbol, type, quantity, price,
			total_amount, fees, dt_transaction, is_active)
		VALUES(:portfolio_id, :asset_id, :user_id, :symbol, :type, :quantity, :price,
			:total_amount, :fees, :dt_transaction, :is_active)
		RETURNING ` + transactionColumns

	rqID := logStart(ctx, op, query, map[string]any{"portfolioID": tx.PortfolioID, "assetID": tx.AssetID, "type": tx.Type})
	defer func() { logFinish(rqID, op, err) }()

	dbTx := dbModel.Transaction{
		PortfolioID:   tx.PortfolioID,
		AssetID:       tx.AssetID,
		UserID:        tx.UserID,
		Symbol:        tx.Symbol,
		Type:          string(tx.Type),
		Quantity:      tx.Quantity,
		Price:         tx.Price,
		TotalAmount:   tx.TotalAmount,
		Fees:          tx.Fees,
		DtTransaction: tx.Date,
		IsActive:      tx.IsActive,
	}

	namedQuery, args, err := sqlx.Named(query, dbTx)
	if err != nil {
		return model.Transaction{}, err
	}

	var row dbModel.Transaction
	err = r.txOrDb(ctx).QueryRowxContext(ctx, sqlx.Rebind(sqlx.DOLLAR, namedQuery), args...).StructScan(&row)
	if err != nil {
		return model.Transaction{}, mapErr(err)
	}

	return dbConverter.ConvertTransaction(row), nil
}

func (r *Postgres) GetTransactions(ctx context.Context, portfolioID int64) (txs []model.Transaction, err error) {
	op := "Postgres.GetTransactions"
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE portfolio_id = $1 ORDER BY dt_transaction, transaction_id`

	rqID := logStart(ctx, op, query, map[string]any{"portfolioID": portfolioID})
	defer func() { logFinish(rqID, op, err) }()

	var rows []dbModel.Transaction
	if err = r.txOrDb(ctx).SelectContext(ctx, &rows, query, portfolioID); err != nil {
		return nil, err
	}

	txs = make([]model.Transaction, 0, len(rows))
	for _, row := range rows {
		txs = append(txs, dbConverter.ConvertTransaction(row))
	}
	return txs, nil
}

func (r *Postgres) GetTransaction(ctx context.Context, transactionID int64) (tx model.Transaction, err error) {
	op := "Postgres.GetTransaction"
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1`

	rqID := logStart(ctx, op, query, map[string]any{"transactionID": transactionID})
	defer func() { logFinish(rqID, op, err) }()

	var row dbModel.Transaction
	if err = r.txOrDb(ctx).GetContext(ctx, &row, query, transactionID); err != nil {
		return model.Transaction{}, mapErr(err)
	}
	return dbConverter.ConvertTransaction(row), nil
}

// DeactivateTransaction flags the record inactive; holdings are not touched.
func (r *Postgres) DeactivateTransaction(ctx context.Context, transactionID int64) (err error) {
	op := "Postgres.DeactivateTransaction"
	query := `UPDATE transactions SET is_active = FALSE WHERE transaction_id = $1`

	rqID := logStart(ctx, op, query, map[string]any{"transactionID": transactionID})
	defer func() { logFinish(rqID, op, err) }()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, transactionID)
	if err != nil {
		return err
	}
	return expectAffected(res)
}
