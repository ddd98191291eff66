package postgres

import (
	"context"
	"time"

	"github.com/KotFed0t/portfolio_tracker/internal/converter/dbConverter"
	"github.com/KotFed0t/portfolio_tracker/internal/model"
	"github.com/KotFed0t/portfolio_tracker/internal/model/dbModel"
)

const alertColumns = `alert_id, asset_id, type, value, is_active, last_triggered, dt_create`

func (r *Postgres) InsertAlert(ctx context.Context, alert model.Alert) (inserted model.Alert, err error) {
	op := "Postgres.InsertAlert"
	query := `INSERT INTO alerts(asset_id, type, value, is_active) VALUES($1, $2, $3, $4) RETURNING ` + alertColumns

	rqID := logStart(ctx, op, query, map[string]any{"assetID": alert.AssetID, "type": alert.Type})
	defer func() { logFinish(rqID, op, err) }()

	var row dbModel.Alert
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, alert.AssetID, string(alert.Type), alert.Value, alert.IsActive).StructScan(&row)
	if err != nil {
		return model.Alert{}, mapErr(err)
	}
	return dbConverter.ConvertAlert(row), nil
}

func (r *Postgres) GetAlerts(ctx context.Context, assetID int64) (alerts []model.Alert, err error) {
	op := "Postgres.GetAlerts"
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE asset_id = $1 ORDER BY alert_id`

	rqID := logStart(ctx, op, query, map[string]any{"assetID": assetID})
	defer func() { logFinish(rqID, op, err) }()

	var rows []dbModel.Alert
	if err = r.txOrDb(ctx).SelectContext(ctx, &rows, query, assetID); err != nil {
		return nil, err
	}

	alerts = make([]model.Alert, 0, len(rows))
	for _, row := range rows {
		alerts = append(alerts, dbConverter.ConvertAlert(row))
	}
	return alerts, nil
}

func (r *Postgres) GetAlert(ctx context.Context, alertID int64) (alert model.Alert, err error) {
	op := "Postgres.GetAlert"
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE alert_id = $1`

	rqID := logStart(ctx, op, query, map[string]any{"alertID": alertID})
	defer func() { logFinish(rqID, op, err) }()

	var row dbModel.Alert
	if err = r.txOrDb(ctx).GetContext(ctx, &row, query, alertID); err != nil {
		return model.Alert{}, mapErr(err)
	}
	return dbConverter.ConvertAlert(row), nil
}

func (r *Postgres) SetAlertTriggered(ctx context.Context, alertID int64, triggeredAt time.Time) (err error) {
	op := "Postgres.SetAlertTriggered"
	query := `UPDATE alerts SET last_triggered = $1 WHERE alert_id = $2`

	rqID := logStart(ctx, op, query, map[string]any{"alertID": alertID})
	defer func() { logFinish(rqID, op, err) }()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, triggeredAt, alertID)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (r *Postgres) DeactivateAlert(ctx context.Context, alertID int64) (err error) {
	op := "Postgres.DeactivateAlert"
	query := `UPDATE alerts SET is_active = FALSE WHERE alert_id = $1`

	rqID := logStart(ctx, op, query, map[string]any{"alertID": alertID})
	defer func() { logFinish(rqID, op, err) }()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, alertID)
	if err != nil {
		return err
	}
	return expectAffected(res)
}
