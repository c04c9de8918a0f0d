package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "hems/internal/domain/booking"
	domainpayment "hems/internal/domain/payment"
	"hems/internal/domain/shared/money"
)

type PaymentRepository struct {
	col *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	col := db.Collection("agg_payment")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "booking_id", Value: 1}}}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &PaymentRepository{col: col}
}

func (r *PaymentRepository) ByID(ctx context.Context, id domainpayment.PaymentID) (*domainpayment.Payment, error) {
	var doc paymentDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainpayment.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *PaymentRepository) Save(ctx context.Context, p *domainpayment.Payment) error {
	doc := newPaymentDocument(p)
	filter := bson.M{"_id": doc.ID, "version": p.Version}
	doc.Version = p.Version + 1
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	p.Version = doc.Version
	return nil
}

func (r *PaymentRepository) ListByBooking(ctx context.Context, id domainbooking.BookingID) ([]*domainpayment.Payment, error) {
	query := bson.M{"booking_id": string(id)}
	cursor, err := r.col.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "recorded_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var out []*domainpayment.Payment
	for cursor.Next(ctx) {
		var doc paymentDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toAggregate())
	}
	return out, cursor.Err()
}

type paymentDocument struct {
	ID         string `bson:"_id"`
	BookingID  string `bson:"booking_id"`
	Amount     int64  `bson:"amount"`
	Currency   string `bson:"currency"`
	Status     string `bson:"status"`
	RecordedAt int64  `bson:"recorded_at"`
	VoidedAt   int64  `bson:"voided_at,omitempty"`
	Version    int64  `bson:"version"`
}

func newPaymentDocument(p *domainpayment.Payment) paymentDocument {
	doc := paymentDocument{
		ID:         string(p.ID),
		BookingID:  string(p.BookingID),
		Amount:     p.Amount.Amount,
		Currency:   p.Amount.Currency,
		Status:     string(p.Status),
		RecordedAt: p.RecordedAt.UnixMilli(),
		Version:    p.Version,
	}
	if !p.VoidedAt.IsZero() {
		doc.VoidedAt = p.VoidedAt.UnixMilli()
	}
	return doc
}

func (d paymentDocument) toAggregate() *domainpayment.Payment {
	p := &domainpayment.Payment{
		ID:         domainpayment.PaymentID(d.ID),
		BookingID:  domainbooking.BookingID(d.BookingID),
		Amount:     money.Money{Amount: d.Amount, Currency: d.Currency},
		Status:     domainpayment.Status(d.Status),
		RecordedAt: timestampToTime(d.RecordedAt),
		Version:    d.Version,
	}
	if d.VoidedAt != 0 {
		p.VoidedAt = timestampToTime(d.VoidedAt)
	} else {
		p.VoidedAt = time.Time{}
	}
	return p
}

var _ domainpayment.Repository = (*PaymentRepository)(nil)
