package postgres

import (
	"context"

	"github.com/KotFed0t/portfolio_tracker/internal/converter/dbConverter"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/model/dbModel"
	"github.com/jmoiron/sqlx"
)

const assetColumns = `asset_id, portfolio_id, symbol, name, quantity, average_price, current_price,
		realized_gain_loss, dividend_income, price_history, last_price_update`

func (r *Postgres) selectAssets(ctx context.Context, op, query string, args ...any) (assets []model.Asset, err error) {
	rqID := logStart(ctx, op, query, map[string]any{"args": args})
	defer func() { logFinish(rqID, op, err) }()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assets = make([]model.Asset, 0)
	for rows.Next() {
		var dbAsset dbModel.Asset
		if err = rows.StructScan(&dbAsset); err != nil {
			return nil, err
		}
		asset, convErr := dbConverter.ConvertAsset(dbAsset)
		if convErr != nil {
			err = convErr
			return nil, err
		}
		assets = append(assets, asset)
	}

	return assets, rows.Err()
}

func (r *Postgres) getAsset(ctx context.Context, op, query string, args ...any) (asset model.Asset, err error) {
	rqID := logStart(ctx, op, query, map[string]any{"args": args})
	defer func() { logFinish(rqID, op, err) }()

	dbAsset := dbModel.Asset{}
	err = r.txOrDb(ctx).GetContext(ctx, &dbAsset, query, args...)
	if err != nil {
		return model.Asset{}, mapErr(err)
	}

	return dbConverter.ConvertAsset(dbAsset)
}

func (r *Postgres) GetAssets(ctx context.Context, portfolioID int64) ([]model.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE portfolio_id = $1 ORDER BY symbol`
	return r.selectAssets(ctx, "Postgres.GetAssets", query, portfolioID)
}

// GetAssetsBySymbol returns every holding of the symbol across all portfolios.
func (r *Postgres) GetAssetsBySymbol(ctx context.Context, symbol string) ([]model.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE symbol = $1 ORDER BY portfolio_id`
	return r.selectAssets(ctx, "Postgres.GetAssetsBySymbol", query, symbol)
}

func (r *Postgres) GetAsset(ctx context.Context, assetID int64) (model.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE asset_id = $1`
	return r.getAsset(ctx, "Postgres.GetAsset", query, assetID)
}

func (r *Postgres) GetAssetBySymbol(ctx context.Context, portfolioID int64, symbol string) (model.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE portfolio_id = $1 AND symbol = $2`
	return r.getAsset(ctx, "Postgres.GetAssetBySymbol", query, portfolioID, symbol)
}

// GetHeldSymbols lists the distinct symbols that still have a non-zero position.
func (r *Postgres) GetHeldSymbols(ctx context.Context) (symbols []string, err error) {
	op := "Postgres.GetHeldSymbols"
	query := `SELECT DISTINCT symbol FROM assets WHERE quantity > 0 ORDER BY symbol`

	rqID := logStart(ctx, op, query, nil)
	defer func() { logFinish(rqID, op, err) }()

	err = r.txOrDb(ctx).SelectContext(ctx, &symbols, query)
	return symbols, err
}

func (r *Postgres) InsertAsset(ctx context.Context, asset model.Asset) (assetID int64, err error) {
	op := "Postgres.InsertAsset"
	query := `
		INSERT INTO assets(portfolio_id, symbol, name, quantity, average_price, current_price,
			realized_gain_loss, dividend_income, price_history, last_price_update)
		VALUES(:portfolio_id, :symbol, :name, :quantity, :average_price, :current_price,
			:realized_gain_loss, :dividend_income, :price_history, :last_price_update)
		RETURNING asset_id
	`

	rqID := logStart(ctx, op, query, map[string]any{"portfolioID": asset.PortfolioID, "symbol": asset.Symbol})
	defer func() { logFinish(rqID, op, err) }()

	dbAsset, err := dbConverter.ToDbAsset(asset)
	if err != nil {
		return 0, err
	}

	namedQuery, args, err := sqlx.Named(query, dbAsset)
	if err != nil {
		return 0, err
	}

	err = r.txOrDb(ctx).QueryRowContext(ctx, sqlx.Rebind(sqlx.DOLLAR, namedQuery), args...).Scan(&assetID)
	if err != nil {
		return 0, mapErr(err)
	}
	return assetID, nil
}

func (r *Postgres) UpdateAsset(ctx context.Context, asset model.Asset) (err error) {
	op := "Postgres.UpdateAsset"
	query := `
		UPDATE assets SET
			name = :name,
			quantity = :quantity,
			average_price = :average_price,
			current_price = :current_price,
			realized_gain_loss = :realized_gain_loss,
			dividend_income = :dividend_income,
			price_history = :price_history,
			last_price_update = :last_price_update
		WHERE asset_id = :asset_id
	`

	rqID := logStart(ctx, op, query, map[string]any{"assetID": asset.AssetID})
	defer func() { logFinish(rqID, op, err) }()

	dbAsset, err := dbConverter.ToDbAsset(asset)
	if err != nil {
		return err
	}

	res, err := r.txOrDb(ctx).NamedExecContext(ctx, query, dbAsset)
	if err != nil {
		return mapErr(err)
	}
	return expectAffected(res)
}
