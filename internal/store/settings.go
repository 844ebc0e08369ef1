package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
)

type settingsRepo struct {
	db *sql.DB
}

func (r *settingsRepo) GetAuthFlag(ctx context.Context) (bool, error) {
	v, ok, err := getSetting(ctx, r.db, settingAuthFlag)
	if err != nil {
		return false, fmt.Errorf("get auth flag: %w", err)
	}
	if !ok {
		return false, nil
	}
	on, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parse auth flag %q: %w", v, err)
	}
	return on, nil
}

func (r *settingsRepo) SetAuthFlag(ctx context.Context, on bool) error {
	if err := putSetting(ctx, r.db, settingAuthFlag, strconv.FormatBool(on)); err != nil {
		return fmt.Errorf("set auth flag: %w", err)
	}
	return nil
}
