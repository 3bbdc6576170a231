package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"brokeaf/backend/models"
)

// Collection names under users/{uid}/.
const (
	colTransactions = "transactions"
	colCategories   = "categories"
	colPlans        = "financial_plans"
)

// FirestoreStore persists each user's collections as Firestore
// subcollections under users/{uid}/.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) col(userID, name string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(userID).Collection(name)
}

// wrapErr logs the failure and maps Firestore status codes onto the
// store error taxonomy.
func wrapErr(err error, action string) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.PermissionDenied:
		log.Printf("Error %s: %v", action, err)
		log.Printf("Database permission denied. %s", PermissionGuidance)
		return fmt.Errorf("%s: %w", action, ErrPermissionDenied)
	case codes.NotFound:
		return fmt.Errorf("%s: %w", action, ErrNotFound)
	}
	log.Printf("Error %s: %v", action, err)
	return fmt.Errorf("%s: %w", action, err)
}

// --- Transactions ---

func (s *FirestoreStore) ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	iter := s.col(userID, colTransactions).OrderBy("date", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var transactions []models.Transaction
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, wrapErr(err, "listing transactions")
		}
		var t models.Transaction
		if err := doc.DataTo(&t); err != nil {
			return nil, wrapErr(err, "decoding transaction")
		}
		t.ID = doc.Ref.ID
		transactions = append(transactions, t)
	}
	return transactions, nil
}

func (s *FirestoreStore) AddTransaction(ctx context.Context, userID string, t models.Transaction) error {
	t.UserID = userID
	t.CreatedAt = time.Now().UnixMilli()
	_, _, err := s.col(userID, colTransactions).Add(ctx, t)
	return wrapErr(err, "adding transaction")
}

func (s *FirestoreStore) UpdateTransaction(ctx context.Context, userID, id string, patch models.TransactionPatch) error {
	updates := transactionUpdates(patch)
	if len(updates) == 0 {
		// Nothing to write, but an absent id must still fail.
		_, err := s.col(userID, colTransactions).Doc(id).Get(ctx)
		return wrapErr(err, "updating transaction")
	}
	_, err := s.col(userID, colTransactions).Doc(id).Update(ctx, updates)
	return wrapErr(err, "updating transaction")
}

func (s *FirestoreStore) DeleteTransaction(ctx context.Context, userID, id string) error {
	log.Printf("Deleting transaction %s for user %s", id, userID)
	_, err := s.col(userID, colTransactions).Doc(id).Delete(ctx)
	return wrapErr(err, "deleting transaction")
}

func (s *FirestoreStore) SubscribeTransactions(ctx context.Context, userID string, fn func([]models.Transaction)) Unsubscribe {
	query := s.col(userID, colTransactions).OrderBy("date", firestore.Desc)
	ctx, cancel := context.WithCancel(ctx)
	snaps := query.Snapshots(ctx)

	go func() {
		for {
			snap, err := snaps.Next()
			if err != nil {
				// Log only; a long-lived listener should not spam the
				// caller with repeated failures.
				if status.Code(err) != codes.Canceled {
					log.Printf("Snapshot error on transactions for user %s: %v", userID, err)
				}
				return
			}
			docs, err := snap.Documents.GetAll()
			if err != nil {
				log.Printf("Snapshot error on transactions for user %s: %v", userID, err)
				continue
			}
			var transactions []models.Transaction
			for _, doc := range docs {
				var t models.Transaction
				if err := doc.DataTo(&t); err != nil {
					log.Printf("Error decoding transaction snapshot: %v", err)
					continue
				}
				t.ID = doc.Ref.ID
				transactions = append(transactions, t)
			}
			fn(transactions)
		}
	}()

	return func() {
		cancel()
		snaps.Stop()
	}
}

func transactionUpdates(patch models.TransactionPatch) []firestore.Update {
	var updates []firestore.Update
	if patch.Type != nil {
		updates = append(updates, firestore.Update{Path: "type", Value: *patch.Type})
	}
	if patch.Amount != nil {
		updates = append(updates, firestore.Update{Path: "amount", Value: *patch.Amount})
	}
	if patch.Category != nil {
		updates = append(updates, firestore.Update{Path: "category", Value: *patch.Category})
	}
	if patch.Date != nil {
		updates = append(updates, firestore.Update{Path: "date", Value: *patch.Date})
	}
	if patch.Notes != nil {
		updates = append(updates, firestore.Update{Path: "notes", Value: *patch.Notes})
	}
	return updates
}

// --- Categories ---

func (s *FirestoreStore) ListCategories(ctx context.Context, userID string) ([]models.Category, error) {
	return listOrSeedCategories(
		func() ([]models.Category, error) { return s.readCategories(ctx, userID) },
		func() error { return s.seedDefaultCategories(ctx, userID) },
	)
}

func (s *FirestoreStore) readCategories(ctx context.Context, userID string) ([]models.Category, error) {
	iter := s.col(userID, colCategories).OrderBy("name", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var categories []models.Category
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, wrapErr(err, "listing categories")
		}
		var c models.Category
		if err := doc.DataTo(&c); err != nil {
			return nil, wrapErr(err, "decoding category")
		}
		c.ID = doc.Ref.ID
		categories = append(categories, c)
	}
	return categories, nil
}

// listOrSeedCategories seeds the default set when the first read comes
// back empty, then re-reads exactly once. A collection still empty
// after a successful seed is an error, never another attempt, so a
// persistently failing backend cannot cause unbounded retries.
func listOrSeedCategories(read func() ([]models.Category, error), seed func() error) ([]models.Category, error) {
	categories, err := read()
	if err != nil {
		return nil, err
	}
	if len(categories) > 0 {
		return categories, nil
	}

	if err := seed(); err != nil {
		return nil, err
	}

	categories, err = read()
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 {
		return nil, errors.New("listing categories: defaults missing after seeding")
	}
	return categories, nil
}

func (s *FirestoreStore) AddCategory(ctx context.Context, userID string, c models.Category) error {
	c.IsSystem = false
	_, _, err := s.col(userID, colCategories).Add(ctx, c)
	return wrapErr(err, "adding category")
}

// DeleteCategory removes the category and retargets its transactions
// to NA in one atomic Firestore transaction.
func (s *FirestoreStore) DeleteCategory(ctx context.Context, userID, id, name string) error {
	if name == models.CategoryNA {
		return nil
	}

	catRef := s.col(userID, colCategories).Doc(id)
	query := s.col(userID, colTransactions).Where("category", "==", name)

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docs, err := tx.Documents(query).GetAll()
		if err != nil {
			return err
		}
		if err := tx.Delete(catRef); err != nil {
			return err
		}
		for _, doc := range docs {
			err := tx.Update(doc.Ref, []firestore.Update{
				{Path: "category", Value: models.CategoryNA},
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return wrapErr(err, "deleting category")
}

func (s *FirestoreStore) SubscribeCategories(ctx context.Context, userID string, fn func([]models.Category)) Unsubscribe {
	query := s.col(userID, colCategories).OrderBy("name", firestore.Asc)
	ctx, cancel := context.WithCancel(ctx)
	snaps := query.Snapshots(ctx)

	go func() {
		seeded := false
		for {
			snap, err := snaps.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					log.Printf("Snapshot error on categories for user %s: %v", userID, err)
				}
				return
			}
			docs, err := snap.Documents.GetAll()
			if err != nil {
				log.Printf("Snapshot error on categories for user %s: %v", userID, err)
				continue
			}
			if len(docs) == 0 && !seeded {
				// Seed at most once per subscription; a successful
				// seed arrives with the next snapshot.
				seeded = true
				err := s.seedDefaultCategories(ctx, userID)
				if err == nil {
					continue
				}
				log.Printf("Error seeding categories for user %s: %v", userID, err)
			}
			var categories []models.Category
			for _, doc := range docs {
				var c models.Category
				if err := doc.DataTo(&c); err != nil {
					log.Printf("Error decoding category snapshot: %v", err)
					continue
				}
				c.ID = doc.Ref.ID
				categories = append(categories, c)
			}
			fn(categories)
		}
	}()

	return func() {
		cancel()
		snaps.Stop()
	}
}

func (s *FirestoreStore) seedDefaultCategories(ctx context.Context, userID string) error {
	col := s.col(userID, colCategories)
	bw := s.client.BulkWriter(ctx)

	defaults := models.DefaultCategorySet()
	jobs := make([]*firestore.BulkWriterJob, 0, len(defaults))
	for _, c := range defaults {
		job, err := bw.Create(col.NewDoc(), c)
		if err != nil {
			return wrapErr(err, "seeding categories")
		}
		jobs = append(jobs, job)
	}
	bw.End()

	// Create only errors on enqueue; the write outcomes surface here.
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return wrapErr(err, "seeding categories")
		}
	}
	return nil
}

// --- Financial plans ---

func (s *FirestoreStore) ListPlans(ctx context.Context, userID string) ([]models.FinancialPlan, error) {
	iter := s.col(userID, colPlans).OrderBy("createdAt", firestore.Desc).Documents(ctx)
	defer iter.Stop()

	var plans []models.FinancialPlan
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, wrapErr(err, "listing financial plans")
		}
		var p models.FinancialPlan
		if err := doc.DataTo(&p); err != nil {
			return nil, wrapErr(err, "decoding financial plan")
		}
		p.ID = doc.Ref.ID
		plans = append(plans, p)
	}
	return plans, nil
}

func (s *FirestoreStore) AddPlan(ctx context.Context, userID string, p models.FinancialPlan) error {
	p.UserID = userID
	p.CreatedAt = time.Now().UnixMilli()
	_, _, err := s.col(userID, colPlans).Add(ctx, p)
	return wrapErr(err, "adding financial plan")
}

func (s *FirestoreStore) UpdatePlan(ctx context.Context, userID, id string, patch models.PlanPatch) error {
	updates := planUpdates(patch)
	if len(updates) == 0 {
		// Nothing to write, but an absent id must still fail.
		_, err := s.col(userID, colPlans).Doc(id).Get(ctx)
		return wrapErr(err, "updating financial plan")
	}
	_, err := s.col(userID, colPlans).Doc(id).Update(ctx, updates)
	return wrapErr(err, "updating financial plan")
}

func (s *FirestoreStore) DeletePlan(ctx context.Context, userID, id string) error {
	log.Printf("Deleting plan %s for user %s", id, userID)
	_, err := s.col(userID, colPlans).Doc(id).Delete(ctx)
	return wrapErr(err, "deleting financial plan")
}

func (s *FirestoreStore) SubscribePlans(ctx context.Context, userID string, fn func([]models.FinancialPlan)) Unsubscribe {
	query := s.col(userID, colPlans).OrderBy("createdAt", firestore.Desc)
	ctx, cancel := context.WithCancel(ctx)
	snaps := query.Snapshots(ctx)

	go func() {
		for {
			snap, err := snaps.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					log.Printf("Snapshot error on plans for user %s: %v", userID, err)
				}
				return
			}
			docs, err := snap.Documents.GetAll()
			if err != nil {
				log.Printf("Snapshot error on plans for user %s: %v", userID, err)
				continue
			}
			var plans []models.FinancialPlan
			for _, doc := range docs {
				var p models.FinancialPlan
				if err := doc.DataTo(&p); err != nil {
					log.Printf("Error decoding plan snapshot: %v", err)
					continue
				}
				p.ID = doc.Ref.ID
				plans = append(plans, p)
			}
			fn(plans)
		}
	}()

	return func() {
		cancel()
		snaps.Stop()
	}
}

func planUpdates(patch models.PlanPatch) []firestore.Update {
	var updates []firestore.Update
	if patch.Name != nil {
		updates = append(updates, firestore.Update{Path: "name", Value: *patch.Name})
	}
	if patch.StartDate != nil {
		updates = append(updates, firestore.Update{Path: "startDate", Value: *patch.StartDate})
	}
	if patch.EndDate != nil {
		updates = append(updates, firestore.Update{Path: "endDate", Value: *patch.EndDate})
	}
	if patch.TargetIncome != nil {
		updates = append(updates, firestore.Update{Path: "targetIncome", Value: *patch.TargetIncome})
	}
	if patch.TargetSavings != nil {
		updates = append(updates, firestore.Update{Path: "targetSavings", Value: *patch.TargetSavings})
	}
	return updates
}
