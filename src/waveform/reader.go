package waveform

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Waveform is one measured pulse read back from a store
type Waveform struct {
	Number      int64
	Event       int64
	Device      string
	Temperature float64
	Times       []float64
	Samples     []float64
}

// Count returns how many waveforms table holds, waveforms are numbered from zero
func Count(ctx context.Context, db *sqlx.DB, table string) (int64, error) {
	var last sql.NullInt64
	query := fmt.Sprintf(`SELECT max("%s") FROM "%s"`, ColumnWaveform, table)
	if err := db.GetContext(ctx, &last, query); err != nil {
		return 0, fmt.Errorf("count waveforms: %w", err)
	}
	if !last.Valid {
		return 0, nil
	}
	return last.Int64 + 1, nil
}

// Read loads the samples of one waveform in acquisition order
func Read(ctx context.Context, db *sqlx.DB, table string, number int64) (Waveform, error) {
	query := fmt.Sprintf(
		`SELECT "%s", "%s", "%s", "%s", "%s" FROM "%s" WHERE "%s" = ? ORDER BY rowid`,
		ColumnEvent, ColumnDevice, ColumnTemperature, ColumnTime, ColumnAmplitude, table, ColumnWaveform,
	)
	rows, err := db.QueryxContext(ctx, query, number)
	if err != nil {
		return Waveform{}, fmt.Errorf("read waveform %d: %w", number, err)
	}
	defer rows.Close()
	w := Waveform{Number: number}
	for rows.Next() {
		var t, sample float64
		if err = rows.Scan(&w.Event, &w.Device, &w.Temperature, &t, &sample); err != nil {
			return Waveform{}, fmt.Errorf("read waveform %d: %w", number, err)
		}
		w.Times = append(w.Times, t)
		w.Samples = append(w.Samples, sample)
	}
	if err = rows.Err(); err != nil {
		return Waveform{}, fmt.Errorf("read waveform %d: %w", number, err)
	}
	if len(w.Samples) == 0 {
		return Waveform{}, fmt.Errorf("%w: no samples for waveform %d", ErrInvalidWaveform, number)
	}
	return w, nil
}
