package seed

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/blood-donation-tracker/internal/model"
	"github.com/iliyamo/blood-donation-tracker/internal/repository"
	"github.com/iliyamo/blood-donation-tracker/internal/service"
)

var userCols = []string{"id", "email", "password_hash", "role", "first_name", "last_name", "city", "is_active", "created_at", "updated_at"}

func TestSeederRun(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	users, donors, hospitals := repository.NewUserRepo(db), repository.NewDonorRepo(db), repository.NewHospitalRepo(db)
	accounts := service.NewAccounts(users, donors, hospitals, bcrypt.MinCost)
	accounts.Now = func() time.Time { return now }
	s := &Seeder{Accounts: accounts, Users: users, Donors: donors, Hospitals: hospitals, Log: zap.NewNop()}

	set := []Account{Demo[0], Demo[2]}

	// admin already present
	mock.ExpectQuery(`FROM users WHERE email=\?`).WithArgs("admin@bloodtracker.com").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(1, "admin@bloodtracker.com", "x", "ADMIN", "Admin", "User", "New York", true, now, now))

	// donor created, then profile adjusted
	mock.ExpectQuery(`FROM users WHERE email=\?`).WithArgs("donor1@email.com").
		WillReturnRows(sqlmock.NewRows(userCols))
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("donor1@email.com", sqlmock.AnyArg(), "DONOR", "John", "Smith", "New York").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec(`INSERT INTO donors`).
		WithArgs(2, "O+", true, now.AddDate(0, -6, 0)).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectCommit()
	mock.ExpectExec(`UPDATE donors SET`).
		WithArgs("O+", true, now.AddDate(0, -3, 0), 5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := s.Run(context.Background(), set)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDemoSet(t *testing.T) {
	roles := map[model.Role]int{}
	for _, a := range Demo {
		roles[a.Role]++
		if a.Role == model.RoleHospital {
			h := model.Hospital{}
			assert.NoError(t, h.ApplyProfile(a.Hospital))
		}
	}
	assert.Equal(t, map[model.Role]int{model.RoleAdmin: 1, model.RoleHospital: 1, model.RoleDonor: 2}, roles)
}
