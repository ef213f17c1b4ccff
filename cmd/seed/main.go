package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"casedesk/internal/config"
	"casedesk/internal/db"
	"casedesk/internal/fieldcipher"
	"casedesk/internal/logger"
	"casedesk/internal/model"
	"casedesk/internal/repository"
)

// SeedUser is a demo account.
type SeedUser struct {
	Name     string
	Username string
	Password string
	Role     model.Role
}

// SeedCase is a demo case. CardNumber is plaintext and encrypted on insert.
type SeedCase struct {
	CustomerName string
	Phone        string
	CardNumber   string
	Issue        string
	Fixed        bool
}

var seedUsers = []SeedUser{
	{Name: "Admin User", Username: "admin", Password: "admin123", Role: model.RoleAdmin},
	{Name: "John Agent", Username: "agent1", Password: "agent123", Role: model.RoleAgent},
	{Name: "Sarah Agent", Username: "agent2", Password: "agent123", Role: model.RoleAgent},
	{Name: "Mike Tech", Username: "tech1", Password: "tech123", Role: model.RoleTech},
	{Name: "Lisa Tech", Username: "tech2", Password: "tech123", Role: model.RoleTech},
}

var seedCases = []SeedCase{
	{CustomerName: "Rajesh Kumar", Phone: "9876543210", CardNumber: "4532123456789012", Issue: "Card declined at POS terminal"},
	{CustomerName: "Priya Sharma", Phone: "9988776655", CardNumber: "5412345678901234", Issue: "Unable to activate card online"},
	{CustomerName: "Amit Patel", Phone: "8899776655", CardNumber: "6011123456789012", Issue: "ATM withdrawal failed", Fixed: true},
	{CustomerName: "Sneha Reddy", Phone: "7766554433", Issue: "Card not received after 10 days"},
	{CustomerName: "Rahul Verma", Phone: "9876512345", CardNumber: "4916123456789012", Issue: "Unauthorized transaction detected", Fixed: true},
	{CustomerName: "Anita Singh", Phone: "8765432109", Issue: "Lost card - need replacement"},
	{CustomerName: "Vikram Mehta", Phone: "9123456789", CardNumber: "5512345678901234", Issue: "PIN reset request", Fixed: true},
	{CustomerName: "Kavita Joshi", Phone: "8234567890", CardNumber: "4024007156789012", Issue: "Card blocked after wrong PIN attempts"},
	{CustomerName: "Suresh Nair", Phone: "9345678901", Issue: "International transaction not working"},
	{CustomerName: "Deepa Iyer", Phone: "8456789012", CardNumber: "6011987654321098", Issue: "Reward points not credited", Fixed: true},
	{CustomerName: "Arjun Kapoor", Phone: "9567890123", Issue: "Unable to set up autopay"},
	{CustomerName: "Neha Gupta", Phone: "8678901234", CardNumber: "4532876543210987", Issue: "Statement not received", Fixed: true},
	{CustomerName: "Karan Malhotra", Phone: "9789012345", Issue: "Credit limit increase request"},
	{CustomerName: "Pooja Desai", Phone: "8890123456", CardNumber: "5412987654321098", Issue: "Duplicate charge on statement"},
	{CustomerName: "Sanjay Rao", Phone: "9901234567", Issue: "Annual fee waiver request", Fixed: true},
}

func main() {
	cfg := config.Load()

	logr, err := logger.New(cfg.LogLevel, "console", "casedesk-seed")
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logr.Sync() }()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		logr.Fatal("Failed to connect to database", zap.Error(err))
	}
	logr.Info("Connected to database")

	// Existing data is always wiped.
	if err := db.Migrate(gormDB, true, logr); err != nil {
		logr.Fatal("Failed to run migrations", zap.Error(err))
	}

	cardCipher, err := fieldcipher.New(cfg.CardSecret)
	if err != nil {
		logr.Fatal("Failed to init card cipher", zap.Error(err))
	}

	ctx := context.Background()
	agents, err := seedAccounts(ctx, repository.NewUserRepository(gormDB), logr)
	if err != nil {
		logr.Fatal("Failed to seed users", zap.Error(err))
	}

	n, err := seedCaseRows(ctx, gormDB, cardCipher, agents, logr)
	if err != nil {
		logr.Fatal("Failed to seed cases", zap.Error(err))
	}

	logr.Info("Seed completed successfully",
		zap.Int("users", len(seedUsers)),
		zap.Int("cases", n),
	)
	for _, u := range seedUsers {
		logr.Info("Login credentials", zap.String("role", string(u.Role)), zap.String("username", u.Username), zap.String("password", u.Password))
	}
}

// seedAccounts creates the demo users and returns the agents in order.
func seedAccounts(ctx context.Context, repo repository.UserRepository, logr *zap.Logger) ([]*model.User, error) {
	var agents []*model.User
	for _, su := range seedUsers {
		hashed, err := bcrypt.GenerateFromPassword([]byte(su.Password), 10)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", su.Username, err)
		}
		user := &model.User{
			Name:         su.Name,
			Username:     su.Username,
			PasswordHash: string(hashed),
			Role:         su.Role,
			Active:       true,
		}
		if err := repo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create user %s: %w", su.Username, err)
		}
		logr.Info("Created user", zap.String("role", string(user.Role)), zap.String("username", user.Username))
		if user.Role == model.RoleAgent {
			agents = append(agents, user)
		}
	}
	return agents, nil
}

// seedCaseRows inserts the demo cases, handing them to agents round robin.
func seedCaseRows(ctx context.Context, gormDB *gorm.DB, cardCipher *fieldcipher.Cipher, agents []*model.User, logr *zap.Logger) (int, error) {
	caseRepo := repository.NewCaseRepository(gormDB)
	logRepo := repository.NewCaseLogRepository(gormDB)
	now := time.Now()

	var entries []model.CaseLog
	for i, sc := range seedCases {
		c := &model.Case{
			CustomerName: sc.CustomerName,
			Phone:        sc.Phone,
			Issue:        sc.Issue,
			CardNumber:   cardCipher.Encrypt(sc.CardNumber),
		}
		if len(agents) > 0 {
			agent := agents[i%len(agents)]
			c.CreatedByID = agent.ID.String()
			c.AgentName = agent.Name
		}
		c.ApplyResolution(sc.Fixed, "", now)

		if err := caseRepo.Create(ctx, c); err != nil {
			return i, fmt.Errorf("create case for %s: %w", sc.CustomerName, err)
		}
		entries = append(entries, model.CaseLog{CaseID: c.ID, Action: model.CaseActionCreated, ByRole: model.RoleAgent, ByUser: c.CreatedByID})
		if sc.Fixed {
			entries = append(entries, model.CaseLog{CaseID: c.ID, Action: model.CaseActionResolved, ByRole: model.RoleTech})
		}
		logr.Info("Created case", zap.String("customer", sc.CustomerName), zap.String("status", string(c.Status)))
	}

	if err := logRepo.CreateBatch(ctx, entries); err != nil {
		return len(seedCases), fmt.Errorf("create case logs: %w", err)
	}
	return len(seedCases), nil
}
