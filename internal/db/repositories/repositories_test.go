package repositories

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	gormModels "flighttest/ftias/internal/models/gorm"
)

var epoch = time.Date(2025, 8, 6, 0, 0, 0, 0, time.UTC)

// Setup test database
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(gormModels.AllModels()...); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return db
}

func TestAllModels_MigratesEveryTable(t *testing.T) {
	db := setupTestDB(t)

	models := []interface{}{
		&gormModels.User{},
		&gormModels.FlightTest{},
		&gormModels.Parameter{},
		&gormModels.DataPoint{},
	}
	if got := len(gormModels.AllModels()); got != len(models) {
		t.Errorf("Expected %d models, got %d", len(models), got)
	}
	for _, model := range models {
		if !db.Migrator().HasTable(model) {
			t.Errorf("Expected table for %T", model)
		}
	}
}

func seedUser(t *testing.T, db *gorm.DB, username string) *gormModels.User {
	t.Helper()
	user := &gormModels.User{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "hash",
		IsActive:     true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	return user
}

func seedFlightTest(t *testing.T, db *gorm.DB, ownerID, name string) *gormModels.FlightTest {
	t.Helper()
	test := &gormModels.FlightTest{TestName: name, CreatedByID: ownerID}
	if err := NewFlightTestRepository(db).Create(context.Background(), test); err != nil {
		t.Fatalf("Failed to seed flight test: %v", err)
	}
	return test
}

func seedPoints(t *testing.T, db *gorm.DB, flightTestID string, params map[string][]float64) {
	t.Helper()
	store := NewStore(db)
	err := store.WithinTransaction(context.Background(), func(uow *UnitOfWork) error {
		var points []gormModels.DataPoint
		for name, values := range params {
			p, err := uow.FindParameterByName(context.Background(), name)
			if err != nil {
				return err
			}
			if p == nil {
				p = &gormModels.Parameter{Name: name}
				if err := uow.CreateParameter(context.Background(), p); err != nil {
					return err
				}
			}
			for i, v := range values {
				points = append(points, gormModels.DataPoint{
					FlightTestID: flightTestID,
					ParameterID:  p.ID,
					Timestamp:    epoch.Add(time.Duration(i) * 100 * time.Millisecond),
					Value:        v,
				})
			}
		}
		return uow.InsertDataPoints(context.Background(), points)
	})
	if err != nil {
		t.Fatalf("Failed to seed data points: %v", err)
	}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	return n
}

func TestStore_WithinTransaction_RollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "owner")
	test := seedFlightTest(t, db, user.ID, "FT-1")
	store := NewStore(db)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.WithinTransaction(ctx, func(uow *UnitOfWork) error {
		p := &gormModels.Parameter{Name: "ALT"}
		if err := uow.CreateParameter(ctx, p); err != nil {
			return err
		}
		if err := uow.InsertDataPoints(ctx, []gormModels.DataPoint{
			{FlightTestID: test.ID, ParameterID: p.ID, Timestamp: epoch, Value: 1},
		}); err != nil {
			return err
		}
		return boom
	})

	if !errors.Is(err, boom) {
		t.Fatalf("Expected boom, got %v", err)
	}
	if n := countRows(t, db, &gormModels.Parameter{}); n != 0 {
		t.Errorf("Expected parameter creation to roll back, found %d", n)
	}
	if n := countRows(t, db, &gormModels.DataPoint{}); n != 0 {
		t.Errorf("Expected data points to roll back, found %d", n)
	}
}

func TestUnitOfWork_InsertDataPointsInBatches(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "owner")
	test := seedFlightTest(t, db, user.ID, "FT-1")

	values := make([]float64, dataPointBatchSize*2+7)
	for i := range values {
		values[i] = float64(i)
	}
	seedPoints(t, db, test.ID, map[string][]float64{"ALT": values})

	if n := countRows(t, db, &gormModels.DataPoint{}); n != int64(len(values)) {
		t.Errorf("Expected %d data points, got %d", len(values), n)
	}
}

func TestUnitOfWork_FindParameterByNameIsExact(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	if err := NewParameterRepository(db).Create(ctx, &gormModels.Parameter{Name: "ALT"}); err != nil {
		t.Fatal(err)
	}

	err := NewStore(db).WithinTransaction(ctx, func(uow *UnitOfWork) error {
		p, err := uow.FindParameterByName(ctx, "alt")
		if err != nil {
			return err
		}
		if p != nil {
			t.Error("Expected case-sensitive miss for alt")
		}
		p, err = uow.FindParameterByName(ctx, "ALT")
		if err != nil {
			return err
		}
		if p == nil {
			t.Error("Expected ALT to be found")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestFlightTestRepository_OwnershipAndDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFlightTestRepository(db)
	ctx := context.Background()

	owner := seedUser(t, db, "owner")
	other := seedUser(t, db, "other")
	test := seedFlightTest(t, db, owner.ID, "FT-1")
	seedPoints(t, db, test.ID, map[string][]float64{"ALT": {1, 2, 3}})

	got, err := repo.FindOwned(ctx, test.ID, other.ID)
	if err != nil || got != nil {
		t.Fatalf("Expected nil for non-owner, got %v, %v", got, err)
	}
	got, err = repo.FindOwned(ctx, test.ID, owner.ID)
	if err != nil || got == nil {
		t.Fatalf("Expected owner to find test, got %v, %v", got, err)
	}

	if err := repo.Delete(ctx, test.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if n := countRows(t, db, &gormModels.DataPoint{}); n != 0 {
		t.Errorf("Expected data points to be deleted, found %d", n)
	}
	if n := countRows(t, db, &gormModels.Parameter{}); n != 1 {
		t.Errorf("Parameters must survive flight test deletion, found %d", n)
	}
}

func TestFlightTestRepository_NameUniquePerOwner(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFlightTestRepository(db)
	ctx := context.Background()

	a := seedUser(t, db, "alice")
	b := seedUser(t, db, "bob")
	seedFlightTest(t, db, a.ID, "FT-1")
	seedFlightTest(t, db, b.ID, "FT-1")

	if err := repo.Create(ctx, &gormModels.FlightTest{TestName: "FT-1", CreatedByID: a.ID}); err == nil {
		t.Error("Expected unique index violation for duplicate name per owner")
	}

	found, err := repo.FindByOwnerAndName(ctx, b.ID, "FT-1")
	if err != nil || found == nil {
		t.Errorf("Expected bob's FT-1, got %v, %v", found, err)
	}
}

func TestUserRepository_DeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	owner := seedUser(t, db, "owner")
	keeper := seedUser(t, db, "keeper")
	doomed := seedFlightTest(t, db, owner.ID, "FT-1")
	kept := seedFlightTest(t, db, keeper.ID, "FT-1")
	seedPoints(t, db, doomed.ID, map[string][]float64{"ALT": {1, 2}})
	seedPoints(t, db, kept.ID, map[string][]float64{"ALT": {3}})

	if err := repo.Delete(ctx, owner.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if n := countRows(t, db, &gormModels.FlightTest{}); n != 1 {
		t.Errorf("Expected 1 flight test left, got %d", n)
	}
	if n := countRows(t, db, &gormModels.DataPoint{}); n != 1 {
		t.Errorf("Expected 1 data point left, got %d", n)
	}
	if u, _ := repo.FindByID(ctx, owner.ID); u != nil {
		t.Error("Expected user to be gone")
	}
}

func TestUserRepository_FindByLoginAndConflicts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	user := seedUser(t, db, "pilot")

	for _, login := range []string{"pilot", "pilot@example.com"} {
		got, err := repo.FindByLogin(ctx, login)
		if err != nil || got == nil || got.ID != user.ID {
			t.Errorf("FindByLogin(%q) = %v, %v", login, got, err)
		}
	}

	conflict, err := repo.FindConflicting(ctx, "new@example.com", "pilot", "")
	if err != nil || conflict == nil {
		t.Errorf("Expected username conflict, got %v, %v", conflict, err)
	}
	conflict, err = repo.FindConflicting(ctx, "pilot@example.com", "pilot", user.ID)
	if err != nil || conflict != nil {
		t.Errorf("A user must not conflict with itself, got %v, %v", conflict, err)
	}
}

func TestParameterRepository_ListFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewParameterRepository(db)
	ctx := context.Background()

	str := func(s string) *string { return &s }
	params := []gormModels.Parameter{
		{Name: "ALT", Description: str("Pressure altitude"), System: str("Air Data"), Category: str("Altitude")},
		{Name: "IAS", Description: str("Indicated airspeed"), System: str("Air Data"), Category: str("Speed")},
		{Name: "N1", Description: str("Fan speed"), System: str("Engine"), Category: str("Speed")},
	}
	if err := repo.CreateMany(ctx, params); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		filter ParameterFilter
		want   []string
	}{
		{"all", ParameterFilter{Limit: 100}, []string{"ALT", "IAS", "N1"}},
		{"search description", ParameterFilter{Search: "SPEED", Limit: 100}, []string{"IAS", "N1"}},
		{"system", ParameterFilter{System: "Air Data", Limit: 100}, []string{"ALT", "IAS"}},
		{"category and system", ParameterFilter{System: "Air Data", Category: "Speed", Limit: 100}, []string{"IAS"}},
		{"paged", ParameterFilter{Skip: 1, Limit: 1}, []string{"IAS"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %v, got %d rows", tt.want, len(got))
			}
			for i, name := range tt.want {
				if got[i].Name != name {
					t.Errorf("Row %d = %s, want %s", i, got[i].Name, name)
				}
			}
		})
	}

	existing, err := repo.FindExistingNames(ctx, []string{"ALT", "PITCH"})
	if err != nil || len(existing) != 1 || existing[0] != "ALT" {
		t.Errorf("FindExistingNames = %v, %v", existing, err)
	}
}

func TestParameterRepository_ReferencedParameterCannotBeDeleted(t *testing.T) {
	db := setupTestDB(t)
	repo := NewParameterRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "owner")
	test := seedFlightTest(t, db, user.ID, "FT-1")
	seedPoints(t, db, test.ID, map[string][]float64{"ALT": {1}})

	alt, _ := repo.FindByName(ctx, "ALT")
	count, err := repo.CountDataPoints(ctx, alt.ID)
	if err != nil || count != 1 {
		t.Fatalf("CountDataPoints = %d, %v", count, err)
	}

	if _, err := repo.DeleteMany(ctx, alt.ID); err == nil {
		t.Error("Expected foreign key violation deleting a referenced parameter")
	}
}

func TestDataPointQueryRepository(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "owner")
	test := seedFlightTest(t, db, user.ID, "FT-1")
	other := seedFlightTest(t, db, user.ID, "FT-2")
	seedPoints(t, db, test.ID, map[string][]float64{"ALT": {10, 30, 20}, "IAS": {100, 110, 120}})
	seedPoints(t, db, other.ID, map[string][]float64{"ALT": {999}})

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	repo := NewDataPointQueryRepository(sqlx.NewDb(sqlDB, "sqlite3"), nil)
	ctx := context.Background()

	rows, err := repo.ListByFlightTest(ctx, test.ID, "", 0, 1000)
	if err != nil {
		t.Fatalf("ListByFlightTest failed: %v", err)
	}
	if len(rows) != 6 {
		t.Fatalf("Expected 6 rows, got %d", len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].Timestamp.Before(rows[i-1].Timestamp.Time) {
			t.Errorf("Rows are not ordered by timestamp at %d", i)
		}
	}

	alt, _ := NewParameterRepository(db).FindByName(ctx, "ALT")
	page, err := repo.ListByFlightTest(ctx, test.ID, alt.ID, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 1 || page[0].Value != 30 || page[0].ParameterName != "ALT" {
		t.Errorf("Unexpected page %+v", page)
	}

	stats, err := repo.ParameterStats(ctx, test.ID)
	if err != nil {
		t.Fatalf("ParameterStats failed: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("Expected stats for 2 parameters, got %d", len(stats))
	}
	altStats := stats[0]
	if altStats.ParameterName != "ALT" || altStats.SampleCount != 3 || altStats.MinValue != 10 || altStats.MaxValue != 30 {
		t.Errorf("Unexpected ALT stats %+v", altStats)
	}
	if !altStats.FirstTimestamp.Equal(epoch) || !altStats.LastTimestamp.Equal(epoch.Add(200*time.Millisecond)) {
		t.Errorf("Unexpected ALT time span %v..%v", altStats.FirstTimestamp, altStats.LastTimestamp)
	}

	if err := repo.Ping(ctx); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestSQLTime_Scan(t *testing.T) {
	tests := []struct {
		name string
		src  interface{}
		want time.Time
	}{
		{"time", epoch, epoch},
		{"sqlite text", "2025-08-06 00:00:01.5+00:00", epoch.Add(1500 * time.Millisecond)},
		{"rfc3339 bytes", []byte("2025-08-06T00:00:02Z"), epoch.Add(2 * time.Second)},
		{"null", nil, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var st SQLTime
			if err := st.Scan(tt.src); err != nil {
				t.Fatalf("Scan failed: %v", err)
			}
			if !st.Equal(tt.want) {
				t.Errorf("Scan = %v, want %v", st.Time, tt.want)
			}
		})
	}

	var st SQLTime
	if err := st.Scan(42); err == nil {
		t.Error("Expected error for unsupported type")
	}
}
