package postgres

import (
	"context"
	"database/sql"

	"github.com/KotFed0t/portfolio_tracker/data/repository"
	"github.com/KotFed0t/portfolio_tracker/internal/converter/dbConverter"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/model/dbModel"
)

const portfolioColumns = `portfolio_id, user_id, name, total_value, total_cost, total_gain_loss,
		total_gain_loss_percentage, history, performance, dt_create, dt_update`

func (r *Postgres) CreatePortfolio(ctx context.Context, userID int64, name string) (portfolio model.Portfolio, err error) {
	op := "Postgres.CreatePortfolio"
	query := `INSERT INTO portfolios(user_id, name) VALUES($1, $2) RETURNING ` + portfolioColumns

	rqID := logStart(ctx, op, query, map[string]any{"userID": userID, "name": name})
	defer func() { logFinish(rqID, op, err) }()

	dbPortfolio := dbModel.Portfolio{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, userID, name).StructScan(&dbPortfolio)
	if err != nil {
		return model.Portfolio{}, mapErr(err)
	}

	return dbConverter.ConvertPortfolio(dbPortfolio)
}

// GetPortfolio returns the portfolio row without its assets.
func (r *Postgres) GetPortfolio(ctx context.Context, portfolioID int64) (portfolio model.Portfolio, err error) {
	op := "Postgres.GetPortfolio"
	query := `SELECT ` + portfolioColumns + ` FROM portfolios WHERE portfolio_id = $1`

	rqID := logStart(ctx, op, query, map[string]any{"portfolioID": portfolioID})
	defer func() { logFinish(rqID, op, err) }()

	dbPortfolio := dbModel.Portfolio{}
	err = r.txOrDb(ctx).GetContext(ctx, &dbPortfolio, query, portfolioID)
	if err != nil {
		return model.Portfolio{}, mapErr(err)
	}

	return dbConverter.ConvertPortfolio(dbPortfolio)
}

func (r *Postgres) GetPortfoliosByUser(ctx context.Context, userID int64) (portfolios []model.Portfolio, err error) {
	op := "Postgres.GetPortfoliosByUser"
	query := `SELECT ` + portfolioColumns + ` FROM portfolios WHERE user_id = $1 ORDER BY portfolio_id`

	rqID := logStart(ctx, op, query, map[string]any{"userID": userID})
	defer func() { logFinish(rqID, op, err) }()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	portfolios = make([]model.Portfolio, 0)
	for rows.Next() {
		var dbPortfolio dbModel.Portfolio
		if err = rows.StructScan(&dbPortfolio); err != nil {
			return nil, err
		}
		portfolio, convErr := dbConverter.ConvertPortfolio(dbPortfolio)
		if convErr != nil {
			err = convErr
			return nil, err
		}
		portfolios = append(portfolios, portfolio)
	}

	return portfolios, rows.Err()
}

func (r *Postgres) GetPortfolioIDs(ctx context.Context) (ids []int64, err error) {
	op := "Postgres.GetPortfolioIDs"
	query := `SELECT portfolio_id FROM portfolios ORDER BY portfolio_id`

	rqID := logStart(ctx, op, query, nil)
	defer func() { logFinish(rqID, op, err) }()

	err = r.txOrDb(ctx).SelectContext(ctx, &ids, query)
	return ids, err
}

// UpdatePortfolio persists the derived figures of the portfolio.
func (r *Postgres) UpdatePortfolio(ctx context.Context, portfolio model.Portfolio) (err error) {
	op := "Postgres.UpdatePortfolio"
	query := `
		UPDATE portfolios SET
			total_value = :total_value,
			total_cost = :total_cost,
			total_gain_loss = :total_gain_loss,
			total_gain_loss_percentage = :total_gain_loss_percentage,
			history = :history,
			performance = :performance,
			dt_update = :dt_update
		WHERE portfolio_id = :portfolio_id
	`

	rqID := logStart(ctx, op, query, map[string]any{"portfolioID": portfolio.PortfolioID})
	defer func() { logFinish(rqID, op, err) }()

	dbPortfolio, err := dbConverter.ToDbPortfolio(portfolio)
	if err != nil {
		return err
	}

	res, err := r.txOrDb(ctx).NamedExecContext(ctx, query, dbPortfolio)
	if err != nil {
		return mapErr(err)
	}
	return expectAffected(res)
}

func (r *Postgres) DeletePortfolio(ctx context.Context, portfolioID int64) (err error) {
	op := "Postgres.DeletePortfolio"
	query := `DELETE FROM portfolios WHERE portfolio_id = $1`

	rqID := logStart(ctx, op, query, map[string]any{"portfolioID": portfolioID})
	defer func() { logFinish(rqID, op, err) }()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, portfolioID)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
