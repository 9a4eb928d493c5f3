package invoiceRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wetech/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoInvoiceRepo implements InvoiceRepository using MongoDB.
type MongoInvoiceRepo struct {
	coll *mongo.Collection
}

// NewMongoInvoiceRepo creates a new instance of InvoiceRepository using MongoDB.
func NewMongoInvoiceRepo(db *mongo.Database, logger *zap.Logger) InvoiceRepository {
	repo := &MongoInvoiceRepo{coll: db.Collection("invoices")}

	if err := repo.ensureIndexes(); err != nil {
		logger.Warn("invoice indexes not created", zap.Error(err))
	}
	return repo
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, d)
}

// Create inserts a new invoice document.
func (r *MongoInvoiceRepo) Create(ctx context.Context, inv *models.Invoice) error {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now
	if inv.Status == "" {
		inv.Status = models.InvoiceUnpaid
	}

	if _, err := r.coll.InsertOne(ctx, inv); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateID, inv.InvoiceID)
		}
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

// GetByInvoiceID retrieves an invoice by its public id.
func (r *MongoInvoiceRepo) GetByInvoiceID(ctx context.Context, invoiceID string) (*models.Invoice, error) {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	var inv models.Invoice
	if err := r.coll.FindOne(ctx, bson.M{"invoice_id": invoiceID}).Decode(&inv); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch invoice %s: %w", invoiceID, err)
	}
	return &inv, nil
}

// MarkPaid moves the invoice to Paid with a conditional single-document
// update, so concurrent deliveries for the same invoice transition it once.
func (r *MongoInvoiceRepo) MarkPaid(ctx context.Context, invoiceID string, pc PaymentConfirmation) (bool, error) {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	paidAt := pc.At.UTC()
	filter := bson.M{"invoice_id": invoiceID, "status": models.InvoiceUnpaid}
	if pc.RespectOverride {
		filter["manual_override"] = bson.M{"$ne": true}
	}
	update := bson.M{"$set": bson.M{
		"status":            models.InvoicePaid,
		"paid_via":          pc.Via,
		"payment_reference": pc.Reference,
		"paid_at":           paidAt,
		"updated_at":        time.Now().UTC(),
	}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to mark invoice %s paid: %w", invoiceID, err)
	}
	if res.ModifiedCount == 1 {
		return true, nil
	}

	n, err := r.coll.CountDocuments(ctx, bson.M{"invoice_id": invoiceID})
	if err != nil {
		return false, fmt.Errorf("failed to look up invoice %s: %w", invoiceID, err)
	}
	if n == 0 {
		return false, ErrNotFound
	}
	return false, nil
}

// SetStatus overrides the invoice status by hand.
func (r *MongoInvoiceRepo) SetStatus(ctx context.Context, invoiceID, status string) (*models.Invoice, error) {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	set := bson.M{
		"status":          status,
		"manual_override": true,
		"updated_at":      now,
	}
	update := bson.M{"$set": set}
	if status == models.InvoicePaid {
		set["paid_via"] = "manual"
		set["paid_at"] = now
	} else {
		update["$unset"] = bson.M{"paid_at": "", "paid_via": "", "payment_reference": ""}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var inv models.Invoice
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"invoice_id": invoiceID}, update, opts).Decode(&inv); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update invoice %s: %w", invoiceID, err)
	}
	return &inv, nil
}

// List returns the newest invoices first.
func (r *MongoInvoiceRepo) List(ctx context.Context, limit int64) ([]models.Invoice, error) {
	ctx, cancel := withTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve invoices: %w", err)
	}
	defer cursor.Close(ctx)

	var invoices []models.Invoice
	for cursor.Next(ctx) {
		var inv models.Invoice
		if err := cursor.Decode(&inv); err != nil {
			return nil, fmt.Errorf("failed to decode invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, cursor.Err()
}
