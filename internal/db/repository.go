package db

import (
	"context"
	"log/slog"
	"time"

	"donation-service/internal/mpesa"
	"github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrDuplicateReceipt is returned by Create when a donation with the same
// M-Pesa receipt already exists.
var ErrDuplicateReceipt = errors.New("donation with this receipt already exists")

var (
	savedCounter     = metrics.GetOrCreateCounter(`donation_repository_total{result="saved"}`)
	duplicateCounter = metrics.GetOrCreateCounter(`donation_repository_total{result="duplicate"}`)
	errorCounter     = metrics.GetOrCreateCounter(`donation_repository_total{result="error"}`)
)

const selectColumns = `id, checkout_request_id, merchant_request_id, amount::text, mpesa_receipt_number,
	phone_number, transaction_date, status, payment_method, created_at`

type DonationRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
	now    func() time.Time
}

func NewDonationRepository(pool *pgxpool.Pool, logger *slog.Logger) *DonationRepository {
	return &DonationRepository{pool: pool, logger: logger, now: time.Now}
}

func (r *DonationRepository) Create(ctx context.Context, entity *DonationEntity) (*DonationEntity, error) {
	query := `INSERT INTO donation (id, checkout_request_id, merchant_request_id, amount, mpesa_receipt_number,
	                                phone_number, transaction_date, status, payment_method, created_at)
	          VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9, $10)
	          ON CONFLICT (mpesa_receipt_number) DO NOTHING
	          RETURNING id`

	var amount *string
	if entity.Amount != nil {
		s := entity.Amount.String()
		amount = &s
	}

	err := r.pool.QueryRow(ctx, query,
		entity.ID, entity.CheckoutRequestID, entity.MerchantRequestID, amount, entity.MpesaReceiptNumber,
		entity.PhoneNumber, entity.TransactionDate, entity.Status, entity.PaymentMethod, entity.CreatedAt,
	).Scan(&entity.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDuplicateReceipt
	}
	if err != nil {
		return nil, errors.Wrap(err, "insert donation")
	}
	return entity, nil
}

func (r *DonationRepository) SelectByID(ctx context.Context, id uuid.UUID) (*DonationEntity, error) {
	query := `SELECT ` + selectColumns + ` FROM donation WHERE id = $1`
	return scanDonation(r.pool.QueryRow(ctx, query, id))
}

// SelectByCheckoutRequestID returns the donations recorded for one STK push,
// oldest first.
func (r *DonationRepository) SelectByCheckoutRequestID(ctx context.Context, checkoutRequestID string) ([]*DonationEntity, error) {
	query := `SELECT ` + selectColumns + ` FROM donation WHERE checkout_request_id = $1 ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, checkoutRequestID)
	if err != nil {
		return nil, errors.Wrap(err, "select donations")
	}
	defer rows.Close()

	var donations []*DonationEntity
	for rows.Next() {
		entity, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		donations = append(donations, entity)
	}
	return donations, rows.Err()
}

// SaveTransaction stores a completed callback transaction. A receipt that
// was already stored is not an error.
func (r *DonationRepository) SaveTransaction(ctx context.Context, tx mpesa.Transaction) error {
	entity := NewCompletedDonation(tx, r.now())

	_, err := r.Create(ctx, entity)
	switch {
	case errors.Is(err, ErrDuplicateReceipt):
		r.logger.WarnContext(ctx, "Donation already stored", "receipt", deref(tx.MpesaReceiptNumber))
		duplicateCounter.Inc()
		return nil
	case err != nil:
		errorCounter.Inc()
		return err
	}

	r.logger.InfoContext(ctx, "Donation stored", "id", entity.ID)
	savedCounter.Inc()
	return nil
}

func scanDonation(row pgx.Row) (*DonationEntity, error) {
	var (
		entity DonationEntity
		amount *string
	)
	err := row.Scan(&entity.ID, &entity.CheckoutRequestID, &entity.MerchantRequestID, &amount,
		&entity.MpesaReceiptNumber, &entity.PhoneNumber, &entity.TransactionDate, &entity.Status,
		&entity.PaymentMethod, &entity.CreatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "scan donation")
	}

	if amount != nil {
		d, err := decimal.NewFromString(*amount)
		if err != nil {
			return nil, errors.Wrap(err, "parse amount")
		}
		entity.Amount = &d
	}
	return &entity, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
