package storage

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"brokeaf/backend/models"
)

// Keys in the demo_store key/value table. One serialized list per
// entity kind plus the demo session profile.
const (
	keyTransactions = "demo.transactions"
	keyCategories   = "demo.categories"
	keyPlans        = "demo.plans"
	keySession      = "demo.session"
)

// DefaultWriteDelay mimics network latency on demo-mode writes so the
// demo feels like the real backend.
const DefaultWriteDelay = 500 * time.Millisecond

// LocalStore backs the demo user with JSON lists in a local sqlite
// key/value table. Change notification is an observer registry scoped
// to this instance: every mutation re-reads the list, re-sorts it the
// same way the remote store orders its queries, and re-invokes each
// subscriber.
type LocalStore struct {
	db *sql.DB

	// WriteDelay is applied before every mutation. Tests set it to 0.
	WriteDelay time.Duration

	mu        sync.Mutex
	nextSubID int
	txSubs    map[int]func([]models.Transaction)
	catSubs   map[int]func([]models.Category)
	planSubs  map[int]func([]models.FinancialPlan)
}

func NewLocalStore(db *sql.DB) *LocalStore {
	return &LocalStore{
		db:         db,
		WriteDelay: DefaultWriteDelay,
		txSubs:     make(map[int]func([]models.Transaction)),
		catSubs:    make(map[int]func([]models.Category)),
		planSubs:   make(map[int]func([]models.FinancialPlan)),
	}
}

// --- key/value layer ---

func (s *LocalStore) get(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM demo_store WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

func (s *LocalStore) set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO demo_store (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *LocalStore) readTransactions() ([]models.Transaction, error) {
	raw, err := s.get(keyTransactions)
	if err != nil || raw == "" {
		return nil, err
	}
	var transactions []models.Transaction
	if err := json.Unmarshal([]byte(raw), &transactions); err != nil {
		return nil, fmt.Errorf("corrupt transaction list: %w", err)
	}
	return transactions, nil
}

func (s *LocalStore) writeTransactions(transactions []models.Transaction) error {
	raw, err := json.Marshal(transactions)
	if err != nil {
		return err
	}
	return s.set(keyTransactions, string(raw))
}

func (s *LocalStore) readCategories() ([]models.Category, error) {
	raw, err := s.get(keyCategories)
	if err != nil || raw == "" {
		return nil, err
	}
	var categories []models.Category
	if err := json.Unmarshal([]byte(raw), &categories); err != nil {
		return nil, fmt.Errorf("corrupt category list: %w", err)
	}
	return categories, nil
}

func (s *LocalStore) writeCategories(categories []models.Category) error {
	raw, err := json.Marshal(categories)
	if err != nil {
		return err
	}
	return s.set(keyCategories, string(raw))
}

func (s *LocalStore) readPlans() ([]models.FinancialPlan, error) {
	raw, err := s.get(keyPlans)
	if err != nil || raw == "" {
		return nil, err
	}
	var plans []models.FinancialPlan
	if err := json.Unmarshal([]byte(raw), &plans); err != nil {
		return nil, fmt.Errorf("corrupt plan list: %w", err)
	}
	return plans, nil
}

func (s *LocalStore) writePlans(plans []models.FinancialPlan) error {
	raw, err := json.Marshal(plans)
	if err != nil {
		return err
	}
	return s.set(keyPlans, string(raw))
}

// Sort orders match what the remote store requests server-side.

func sortTransactions(transactions []models.Transaction) {
	sort.SliceStable(transactions, func(i, j int) bool {
		if transactions[i].Date != transactions[j].Date {
			return transactions[i].Date > transactions[j].Date
		}
		return transactions[i].CreatedAt > transactions[j].CreatedAt
	})
}

func sortCategories(categories []models.Category) {
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
}

func sortPlans(plans []models.FinancialPlan) {
	sort.SliceStable(plans, func(i, j int) bool {
		return plans[i].CreatedAt > plans[j].CreatedAt
	})
}

// --- seeding ---

// seedTransactions are the sample entries a fresh demo store starts
// with. Fixed values keep the demo deterministic.
func seedTransactions() []models.Transaction {
	return []models.Transaction{
		{
			ID:        "demo-tx-1",
			UserID:    models.DemoUserID,
			Type:      models.TypeIncome,
			Amount:    2500,
			Category:  "Salary",
			Date:      "2024-01-05",
			Notes:     "Monthly salary",
			CreatedAt: 1704412800000,
		},
		{
			ID:        "demo-tx-2",
			UserID:    models.DemoUserID,
			Type:      models.TypeExpense,
			Amount:    450,
			Category:  "Food",
			Date:      "2024-01-12",
			Notes:     "Groceries",
			CreatedAt: 1705017600000,
		},
		{
			ID:        "demo-tx-3",
			UserID:    models.DemoUserID,
			Type:      models.TypeExpense,
			Amount:    120,
			Category:  "Entertainment",
			Date:      "2024-01-20",
			Notes:     "Movie night",
			CreatedAt: 1705708800000,
		},
	}
}

func (s *LocalStore) ensureTransactionsSeeded() ([]models.Transaction, error) {
	raw, err := s.get(keyTransactions)
	if err != nil {
		return nil, err
	}
	if raw != "" {
		return s.readTransactions()
	}
	seeded := seedTransactions()
	if err := s.writeTransactions(seeded); err != nil {
		return nil, err
	}
	return seeded, nil
}

func (s *LocalStore) ensureCategoriesSeeded() ([]models.Category, error) {
	raw, err := s.get(keyCategories)
	if err != nil {
		return nil, err
	}
	if raw != "" {
		return s.readCategories()
	}
	var seeded []models.Category
	for _, c := range models.DefaultCategorySet() {
		id, err := generateID()
		if err != nil {
			return nil, err
		}
		c.ID = id
		seeded = append(seeded, c)
	}
	if err := s.writeCategories(seeded); err != nil {
		return nil, err
	}
	return seeded, nil
}

// --- notification ---

func (s *LocalStore) notifyTransactions() {
	s.mu.Lock()
	transactions, err := s.readTransactions()
	if err != nil {
		s.mu.Unlock()
		log.Printf("Error reading transactions for notification: %v", err)
		return
	}
	sortTransactions(transactions)
	subs := make([]func([]models.Transaction), 0, len(s.txSubs))
	for _, fn := range s.txSubs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(transactions)
	}
}

func (s *LocalStore) notifyCategories() {
	s.mu.Lock()
	categories, err := s.readCategories()
	if err != nil {
		s.mu.Unlock()
		log.Printf("Error reading categories for notification: %v", err)
		return
	}
	sortCategories(categories)
	subs := make([]func([]models.Category), 0, len(s.catSubs))
	for _, fn := range s.catSubs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(categories)
	}
}

func (s *LocalStore) notifyPlans() {
	s.mu.Lock()
	plans, err := s.readPlans()
	if err != nil {
		s.mu.Unlock()
		log.Printf("Error reading plans for notification: %v", err)
		return
	}
	sortPlans(plans)
	subs := make([]func([]models.FinancialPlan), 0, len(s.planSubs))
	for _, fn := range s.planSubs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(plans)
	}
}

// --- Transactions ---

func (s *LocalStore) ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	s.mu.Lock()
	transactions, err := s.ensureTransactionsSeeded()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	sortTransactions(transactions)
	return transactions, nil
}

func (s *LocalStore) AddTransaction(ctx context.Context, userID string, t models.Transaction) error {
	time.Sleep(s.WriteDelay)

	id, err := generateID()
	if err != nil {
		return err
	}
	t.ID = id
	t.UserID = userID
	t.CreatedAt = time.Now().UnixMilli()

	s.mu.Lock()
	transactions, err := s.readTransactions()
	if err == nil {
		err = s.writeTransactions(append(transactions, t))
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notifyTransactions()
	return nil
}

func (s *LocalStore) UpdateTransaction(ctx context.Context, userID, id string, patch models.TransactionPatch) error {
	time.Sleep(s.WriteDelay)

	s.mu.Lock()
	transactions, err := s.readTransactions()
	if err == nil {
		found := false
		for i := range transactions {
			if transactions[i].ID == id {
				patch.Apply(&transactions[i])
				found = true
				break
			}
		}
		if !found {
			err = fmt.Errorf("updating transaction %s: %w", id, ErrNotFound)
		} else {
			err = s.writeTransactions(transactions)
		}
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notifyTransactions()
	return nil
}

func (s *LocalStore) DeleteTransaction(ctx context.Context, userID, id string) error {
	time.Sleep(s.WriteDelay)

	s.mu.Lock()
	transactions, err := s.readTransactions()
	if err == nil {
		kept := transactions[:0]
		for _, t := range transactions {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		err = s.writeTransactions(kept)
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notifyTransactions()
	return nil
}

func (s *LocalStore) SubscribeTransactions(ctx context.Context, userID string, fn func([]models.Transaction)) Unsubscribe {
	s.mu.Lock()
	transactions, err := s.ensureTransactionsSeeded()
	if err != nil {
		log.Printf("Error seeding demo transactions: %v", err)
	}
	sortTransactions(transactions)
	s.nextSubID++
	id := s.nextSubID
	s.txSubs[id] = fn
	s.mu.Unlock()

	fn(transactions)

	return func() {
		s.mu.Lock()
		delete(s.txSubs, id)
		s.mu.Unlock()
	}
}

// --- Categories ---

func (s *LocalStore) ListCategories(ctx context.Context, userID string) ([]models.Category, error) {
	s.mu.Lock()
	categories, err := s.ensureCategoriesSeeded()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	sortCategories(categories)
	return categories, nil
}

func (s *LocalStore) AddCategory(ctx context.Context, userID string, c models.Category) error {
	time.Sleep(s.WriteDelay)

	id, err := generateID()
	if err != nil {
		return err
	}
	c.ID = id
	c.IsSystem = false

	s.mu.Lock()
	categories, err := s.readCategories()
	if err == nil {
		err = s.writeCategories(append(categories, c))
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notifyCategories()
	return nil
}

// DeleteCategory is the demo-mode cascade: two sequential list
// rewrites with no rollback. Demo writes are local and effectively
// cannot fail partway.
func (s *LocalStore) DeleteCategory(ctx context.Context, userID, id, name string) error {
	if name == models.CategoryNA {
		return nil
	}
	time.Sleep(s.WriteDelay)

	s.mu.Lock()
	categories, err := s.readCategories()
	if err == nil {
		kept := categories[:0]
		for _, c := range categories {
			if c.ID != id {
				kept = append(kept, c)
			}
		}
		err = s.writeCategories(kept)
	}

	var transactions []models.Transaction
	if err == nil {
		transactions, err = s.readTransactions()
	}
	if err == nil {
		for i := range transactions {
			if transactions[i].Category == name {
				transactions[i].Category = models.CategoryNA
			}
		}
		err = s.writeTransactions(transactions)
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.notifyCategories()
	s.notifyTransactions()
	return nil
}

func (s *LocalStore) SubscribeCategories(ctx context.Context, userID string, fn func([]models.Category)) Unsubscribe {
	s.mu.Lock()
	categories, err := s.ensureCategoriesSeeded()
	if err != nil {
		log.Printf("Error seeding demo categories: %v", err)
	}
	sortCategories(categories)
	s.nextSubID++
	id := s.nextSubID
	s.catSubs[id] = fn
	s.mu.Unlock()

	fn(categories)

	return func() {
		s.mu.Lock()
		delete(s.catSubs, id)
		s.mu.Unlock()
	}
}

// --- Financial plans ---

func (s *LocalStore) ListPlans(ctx context.Context, userID string) ([]models.FinancialPlan, error) {
	s.mu.Lock()
	plans, err := s.readPlans()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	sortPlans(plans)
	return plans, nil
}

func (s *LocalStore) AddPlan(ctx context.Context, userID string, p models.FinancialPlan) error {
	time.Sleep(s.WriteDelay)

	id, err := generateID()
	if err != nil {
		return err
	}
	p.ID = id
	p.UserID = userID
	p.CreatedAt = time.Now().UnixMilli()

	s.mu.Lock()
	plans, err := s.readPlans()
	if err == nil {
		err = s.writePlans(append(plans, p))
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notifyPlans()
	return nil
}

func (s *LocalStore) UpdatePlan(ctx context.Context, userID, id string, patch models.PlanPatch) error {
	time.Sleep(s.WriteDelay)

	s.mu.Lock()
	plans, err := s.readPlans()
	if err == nil {
		found := false
		for i := range plans {
			if plans[i].ID == id {
				patch.Apply(&plans[i])
				found = true
				break
			}
		}
		if !found {
			err = fmt.Errorf("updating plan %s: %w", id, ErrNotFound)
		} else {
			err = s.writePlans(plans)
		}
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notifyPlans()
	return nil
}

func (s *LocalStore) DeletePlan(ctx context.Context, userID, id string) error {
	time.Sleep(s.WriteDelay)

	s.mu.Lock()
	plans, err := s.readPlans()
	if err == nil {
		kept := plans[:0]
		for _, p := range plans {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		err = s.writePlans(kept)
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notifyPlans()
	return nil
}

func (s *LocalStore) SubscribePlans(ctx context.Context, userID string, fn func([]models.FinancialPlan)) Unsubscribe {
	s.mu.Lock()
	plans, err := s.readPlans()
	if err != nil {
		log.Printf("Error reading demo plans: %v", err)
	}
	sortPlans(plans)
	s.nextSubID++
	id := s.nextSubID
	s.planSubs[id] = fn
	s.mu.Unlock()

	fn(plans)

	return func() {
		s.mu.Lock()
		delete(s.planSubs, id)
		s.mu.Unlock()
	}
}

// --- Demo session ---

// GetDemoProfile returns the persisted demo session profile, or a
// fresh default when none has been saved yet.
func (s *LocalStore) GetDemoProfile() (models.UserProfile, error) {
	s.mu.Lock()
	raw, err := s.get(keySession)
	s.mu.Unlock()
	if err != nil {
		return models.UserProfile{}, err
	}
	if raw == "" {
		return models.UserProfile{
			UID:         models.DemoUserID,
			DisplayName: "Guest Bestie",
			Email:       "guest@brokeaf.app",
		}, nil
	}
	var profile models.UserProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return models.UserProfile{}, fmt.Errorf("corrupt demo session: %w", err)
	}
	return profile, nil
}

// SetDemoProfile persists the demo session profile.
func (s *LocalStore) SetDemoProfile(profile models.UserProfile) error {
	profile.UID = models.DemoUserID
	raw, err := json.Marshal(profile)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set(keySession, string(raw))
}

// generateID returns a random 32-char hex id.
func generateID() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
