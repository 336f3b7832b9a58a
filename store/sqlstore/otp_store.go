package sqlstore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type OTPStore struct {
	db bun.IDB
}

func NewOTPStore(db bun.IDB) *OTPStore {
	return &OTPStore{db: db}
}

func (s *OTPStore) Issue(ctx context.Context, account, code string, issued time.Time) error {
	rec := &otpRecord{Account: account, Code: code, Issued: dbTime(issued)}
	if _, err := s.db.NewInsert().Model(rec).Exec(ctx); err != nil {
		return errors.Wrap(err, "sqlstore: insert otp")
	}
	return nil
}

// Consume deletes the matching code and reports whether one was found.
func (s *OTPStore) Consume(ctx context.Context, account, code string, issuedAfter time.Time) (bool, error) {
	var consumed []string
	err := s.db.NewRaw(
		"DELETE FROM otps WHERE account = ? AND code = ? AND issued >= ? RETURNING code",
		account, code, dbTime(issuedAfter),
	).Scan(ctx, &consumed)
	if err != nil {
		return false, errors.Wrap(err, "sqlstore: consume otp")
	}
	return len(consumed) > 0, nil
}

func (s *OTPStore) DeleteIssuedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.NewDelete().
		Model((*otpRecord)(nil)).
		Where("issued < ?", dbTime(cutoff)).
		Exec(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "sqlstore: delete otps")
	}
	return res.RowsAffected()
}
