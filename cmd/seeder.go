package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/gastoscl/rendiciones/internal/area"
	"github.com/gastoscl/rendiciones/internal/auth"
	"github.com/gastoscl/rendiciones/internal/category"
	"github.com/gastoscl/rendiciones/internal/client"
	"github.com/gastoscl/rendiciones/internal/user"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		gdb, _, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		if clearData {
			clearTables(gdb)
		}

		seedAreas(gdb)
		seedCategories(gdb)
		seedUsers(gdb, cfg.Security.BCryptCost)
		seedClients(gdb)

		fmt.Println("Seeding complete")
	},
}

func clearTables(gdb *gorm.DB) {
	// Child tables first so foreign keys never dangle.
	for _, table := range []string{"approvals", "expenses", "clients", "users", "expense_categories", "areas"} {
		if err := gdb.Exec("DELETE FROM " + table).Error; err != nil {
			log.Fatalf("failed to clear %s: %v", table, err)
		}
	}
	fmt.Println("Cleared existing data")
}

func seedAreas(gdb *gorm.DB) {
	areas := []area.Area{
		{Name: "Operaciones", BudgetMonthly: 2500000, IsActive: true, CreatedAt: time.Now()},
		{Name: "Ventas", BudgetMonthly: 1800000, IsActive: true, CreatedAt: time.Now()},
		{Name: "Administración", BudgetMonthly: 900000, IsActive: true, CreatedAt: time.Now()},
	}
	for _, a := range areas {
		var count int64
		gdb.Model(&area.Area{}).Where("name = ?", a.Name).Count(&count)
		if count > 0 {
			continue
		}
		if err := gdb.Create(&a).Error; err != nil {
			log.Fatalf("failed to seed area %s: %v", a.Name, err)
		}
		fmt.Println("Seeded area:", a.Name)
	}
}

func seedCategories(gdb *gorm.DB) {
	categories := []category.ExpenseCategory{
		{Name: "Transporte", RequiresClient: true, MaxAmount: 50000, IsActive: true},
		{Name: "Alimentación", RequiresClient: true, MaxAmount: 30000, IsActive: true},
		{Name: "Alojamiento", RequiresClient: true, MaxAmount: 120000, IsActive: true},
		{Name: "Materiales", RequiresClient: true, MaxAmount: 0, IsActive: true},
		{Name: "Otros", RequiresClient: true, MaxAmount: 0, IsActive: true},
	}
	for _, c := range categories {
		var count int64
		gdb.Model(&category.ExpenseCategory{}).Where("name = ?", c.Name).Count(&count)
		if count > 0 {
			continue
		}
		if err := gdb.Create(&c).Error; err != nil {
			log.Fatalf("failed to seed category %s: %v", c.Name, err)
		}
		fmt.Println("Seeded category:", c.Name)
	}
}

func seedUsers(gdb *gorm.DB, bcryptCost int) {
	hasher := auth.BcryptHasher{Cost: bcryptCost}
	hash, err := hasher.HashPassword("password")
	if err != nil {
		log.Fatalf("failed to hash seed password: %v", err)
	}

	admin := ensureUser(gdb, user.User{
		Email:        "admin@rendiciones.cl",
		PasswordHash: hash,
		FirstName:    "Ana",
		LastName:     "Admin",
		Role:         string(auth.RoleAdmin),
		IsActive:     true,
		CreatedAt:    time.Now(),
	})

	supervisor := ensureUser(gdb, user.User{
		Email:        "supervisor@rendiciones.cl",
		PasswordHash: hash,
		FirstName:    "Sergio",
		LastName:     "Supervisor",
		Role:         string(auth.RoleSupervisor),
		SupervisorID: &admin.ID,
		IsActive:     true,
		CreatedAt:    time.Now(),
	})

	ensureUser(gdb, user.User{
		Email:        "usuario@rendiciones.cl",
		PasswordHash: hash,
		FirstName:    "Carla",
		LastName:     "Campos",
		Role:         string(auth.RoleUser),
		SupervisorID: &supervisor.ID,
		IsActive:     true,
		CreatedAt:    time.Now(),
	})
}

func ensureUser(gdb *gorm.DB, u user.User) *user.User {
	var existing user.User
	if err := gdb.Where("email = ?", u.Email).First(&existing).Error; err == nil {
		fmt.Println("User already exists:", u.Email)
		return &existing
	}
	if err := gdb.Create(&u).Error; err != nil {
		log.Fatalf("failed to seed user %s: %v", u.Email, err)
	}
	fmt.Println("Seeded user:", u.Email)
	return &u
}

func seedClients(gdb *gorm.DB) {
	var admin user.User
	if err := gdb.Where("email = ?", "admin@rendiciones.cl").First(&admin).Error; err != nil {
		log.Fatalf("failed to look up seed admin: %v", err)
	}

	clients := []client.Client{
		{RUT: "12.345.678-5", Name: "Constructora Andes SpA", ContactEmail: "contacto@andes.cl", Status: client.StatusActive, IsActive: true, CreatedBy: admin.ID, CreatedAt: time.Now()},
		{RUT: "87.654.321-4", Name: "Minera Atacama Ltda", ContactEmail: "finanzas@atacama.cl", Status: client.StatusPending, IsActive: false, CreatedBy: admin.ID, CreatedAt: time.Now()},
	}
	for _, c := range clients {
		var count int64
		gdb.Model(&client.Client{}).Where("rut = ?", c.RUT).Count(&count)
		if count > 0 {
			continue
		}
		if err := gdb.Create(&c).Error; err != nil {
			log.Fatalf("failed to seed client %s: %v", c.Name, err)
		}
		fmt.Println("Seeded client:", c.Name)
	}
}
