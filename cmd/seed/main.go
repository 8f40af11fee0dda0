// Seed fills the database with demo users and a month of ledger activity so
// the dashboard has something to aggregate in development.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"paydash/internal/domain"
	"paydash/internal/repository/postgres"
	"paydash/pkg/config"
	"paydash/pkg/errors"
	"paydash/pkg/logger"
)

var (
	statuses = []domain.TxnStatus{
		domain.StatusSuccess, domain.StatusSuccess, domain.StatusSuccess,
		domain.StatusSuccess, domain.StatusPending, domain.StatusFailed,
	}
	types   = []domain.TxnType{domain.TypePayment, domain.TypePayment, domain.TypeRefund, domain.TypeTransfer}
	methods = []string{domain.MethodUPI, domain.MethodUPI, domain.MethodCard, domain.MethodNetbanking, domain.MethodWallet}
)

func main() {
	_ = godotenv.Load()

	userCount := flag.Int("users", 25, "number of demo users to create")
	txnCount := flag.Int("transactions", 2000, "number of transactions to create")
	spanDays := flag.Int("days", 35, "how many days of history to spread transactions over")
	flag.Parse()

	cfg := config.Load()
	log := logger.New("seed")

	if err := cfg.ValidateCore(); err != nil {
		log.Fatal("Invalid configuration", map[string]interface{}{"error": err.Error()})
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal("Failed to connect to database", map[string]interface{}{"error": err.Error()})
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	txRepo := postgres.NewTransactionRepository(db)

	ctx := context.Background()
	now := time.Now().UTC()

	passwordHash, err := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash demo password", map[string]interface{}{"error": err.Error()})
	}

	userIDs := make([]uuid.UUID, 0, *userCount)
	for i := 0; i < *userCount; i++ {
		createdAt := now.Add(-time.Duration(rand.Intn(*spanDays*24)) * time.Hour)
		user := &domain.User{
			ID:           uuid.New(),
			Email:        fmt.Sprintf("demo%03d@paydash.local", i+1),
			FullName:     fmt.Sprintf("Demo User %03d", i+1),
			PasswordHash: string(passwordHash),
			IsActive:     true,
			CreatedAt:    createdAt,
			UpdatedAt:    createdAt,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			// Re-running the seed reuses the existing demo accounts.
			if errors.Is(err, errors.ErrUserAlreadyExists) {
				existing, ferr := userRepo.FindByEmail(ctx, user.Email)
				if ferr != nil {
					log.Fatal("Failed to look up existing user", map[string]interface{}{
						"email": user.Email,
						"error": ferr.Error(),
					})
				}
				userIDs = append(userIDs, existing.ID)
				continue
			}
			log.Fatal("Failed to create user", map[string]interface{}{
				"email": user.Email,
				"error": err.Error(),
			})
		}
		userIDs = append(userIDs, user.ID)
	}

	log.Info("Seeded users", map[string]interface{}{"count": len(userIDs)})

	for i := 0; i < *txnCount; i++ {
		createdAt := now.
			Add(-time.Duration(rand.Intn(*spanDays)) * 24 * time.Hour).
			Add(-time.Duration(rand.Intn(24)) * time.Hour).
			Add(-time.Duration(rand.Intn(60)) * time.Minute)

		// Amounts between 10.00 and 5009.99
		amount := decimal.NewFromInt(int64(rand.Intn(500000)+1000)).Div(decimal.NewFromInt(100))

		txn := &domain.Transaction{
			ID:            uuid.New(),
			UserID:        userIDs[rand.Intn(len(userIDs))],
			Amount:        amount,
			Currency:      "INR",
			Type:          types[rand.Intn(len(types))],
			Status:        statuses[rand.Intn(len(statuses))],
			PaymentMethod: methods[rand.Intn(len(methods))],
			CreatedAt:     createdAt,
		}
		if err := txRepo.Create(ctx, txn); err != nil {
			log.Fatal("Failed to create transaction", map[string]interface{}{"error": err.Error()})
		}
	}

	log.Info("Seeded transactions", map[string]interface{}{"count": *txnCount})
}
