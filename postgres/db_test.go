package postgres_test

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/emeraldlinks/slintrust"
	"github.com/emeraldlinks/slintrust/postgres"
	"github.com/emeraldlinks/slintrust/schema"
)

type Account struct {
	slintrust.Model
	Kind string
}

func (Account) TableName() string { return "accounts" }

type User struct {
	slintrust.Model
	AccountID string
	Email     string `slint:"unique"`
	Name      string
	Role      string
	Status    string
}

func (User) TableName() string { return "users" }

func newUser(acctID string) User {
	eid := uuid.New()
	parts := strings.Split(eid.String(), "-")
	return User{
		AccountID: acctID,
		Email:     parts[0] + "@example.com",
		Name:      parts[1] + " " + parts[2],
	}
}

func (suite *DBTestSuite) insert(model any) {
	suite.T().Helper()

	tbl, err := schema.Parse(model)
	suite.Require().Nil(err)

	cols, vals, err := tbl.InsertValues(model)
	suite.Require().Nil(err)

	suite.Require().Nil(suite.db.Exec(postgres.InsertSQL(tbl.Name, cols), vals...))
}

func (suite *DBTestSuite) insertAccounts() []Account {
	suite.T().Helper()

	accts := []Account{
		{Kind: "special"},
		{Kind: "exceptional"},
		{Kind: "exceptional"},
		{Kind: "default"},
		{Kind: "default"},
	}
	for i := range accts {
		accts[i].ID = uuid.NewString()
		suite.insert(accts[i])
	}

	return accts
}

func (suite *DBTestSuite) insertUsers(accts []Account) []User {
	suite.T().Helper()

	var users []User
	last := len(accts) - 1
	for i, acct := range accts {
		user := newUser(acct.ID)
		user.ID = uuid.NewString()
		user.Role, user.Status = "owner", "active"
		if i == last {
			user.Status = "inactive"
		}
		users = append(users, user)
	}

	for _, user := range users {
		suite.insert(user)
	}

	return users
}

func (suite *DBTestSuite) TestExec() {
	// Arrange
	accts := suite.insertAccounts()

	// Act
	err := suite.db.Exec("UPDATE accounts SET kind = ? WHERE id = ?", "upgraded", accts[0].ID)

	// Assert
	suite.Require().Nil(err)

	// Act
	err = suite.db.Exec("UPDATE accounts SET kind = ? WHERE id = ?", "upgraded", "no-such-id")

	// Assert
	suite.Require().ErrorIs(err, slintrust.ErrNotFound)

	// Act
	err = suite.db.Exec("UPDATE accounts SIT kind = ?", "upgraded")

	// Assert
	suite.Require().ErrorIs(err, slintrust.ErrNotValid)
}

func (suite *DBTestSuite) TestExecUniqueViolation() {
	// Arrange
	accts := suite.insertAccounts()
	user := newUser(accts[0].ID)
	user.ID = uuid.NewString()
	suite.insert(user)

	dupe := user
	dupe.ID = uuid.NewString()

	tbl, err := schema.Parse(dupe)
	suite.Require().Nil(err)
	cols, vals, err := tbl.InsertValues(dupe)
	suite.Require().Nil(err)

	// Act
	err = suite.db.Exec(postgres.InsertSQL(tbl.Name, cols), vals...)

	// Assert
	suite.Require().ErrorIs(err, slintrust.ErrExists)
}

func (suite *DBTestSuite) TestRaw() {
	// Arrange
	suite.insertAccounts()

	// Act
	var count int64
	err := suite.db.Raw(&count, "SELECT COUNT(*) FROM accounts")

	// Assert
	suite.Require().Nil(err)
	suite.Require().Equal(int64(5), count)

	// Act
	var kinds []string
	err = suite.db.Raw(&kinds, "SELECT kind FROM accounts WHERE kind LIKE ?", "%exce%")

	// Assert
	suite.Require().Nil(err)
	suite.Require().Len(kinds, 2)

	// Act
	err = suite.db.Raw(&count, "SELECT COUNT(*) FROM no_such_table")

	// Assert
	suite.Require().ErrorIs(err, slintrust.ErrNotValid)
}

func (suite *DBTestSuite) TestQueryFind() {
	// Arrange
	accts := suite.insertAccounts()
	suite.insertUsers(accts)

	// Act
	var active []User
	err := suite.db.Query("users").
		Where("status", "=", "active").
		OrderBy("email", "ASC").
		Find(&active)

	// Assert
	suite.Require().Nil(err)
	suite.Require().Len(active, 4)

	// Act
	var none []User
	err = suite.db.Query("users").Where("status", "=", "on-sabbatical").Find(&none)

	// Assert
	suite.Require().Nil(err)
	suite.Require().Empty(none)
}

func (suite *DBTestSuite) TestQueryFirst() {
	// Arrange
	accts := suite.insertAccounts()
	users := suite.insertUsers(accts)

	// Act
	var found User
	err := suite.db.Query("users").Where("email", "=", users[0].Email).First(&found)

	// Assert
	suite.Require().Nil(err)
	suite.Require().Equal(users[0].ID, found.ID)

	// Act
	err = suite.db.Query("users").Where("email", "=", "nobody@example.com").First(&found)

	// Assert
	suite.Require().ErrorIs(err, slintrust.ErrNotFound)
}

func (suite *DBTestSuite) TestQueryCount() {
	// Arrange
	suite.insertAccounts()

	// Act
	count, err := suite.db.Query("accounts").Where("kind", "=", "default").Count()

	// Assert
	suite.Require().Nil(err)
	suite.Require().Equal(int64(2), count)
}

func (suite *DBTestSuite) TestQueryExists() {
	// Arrange
	suite.insertAccounts()

	// Act
	exists, err := suite.db.Query("accounts").Where("kind", "=", "special").Exists()

	// Assert
	suite.Require().Nil(err)
	suite.Require().True(exists)

	// Act
	exists, err = suite.db.Query("accounts").Where("kind", "=", "imaginary").Exists()

	// Assert
	suite.Require().Nil(err)
	suite.Require().False(exists)
}

func (suite *DBTestSuite) TestQueryLike() {
	// Arrange
	suite.insertAccounts()

	// Act
	var kinds []string
	err := suite.db.Query("accounts").Select("kind").Like("kind", "exce").Find(&kinds)

	// Assert
	suite.Require().Nil(err)
	suite.Require().Len(kinds, 2)
}

func (suite *DBTestSuite) TestCommit() {
	// Arrange
	tx := suite.db.Begin()
	acct := Account{Kind: "commit-test"}
	acct.ID = uuid.NewString()

	tbl, err := schema.Parse(acct)
	suite.Require().Nil(err)
	cols, vals, err := tbl.InsertValues(acct)
	suite.Require().Nil(err)
	suite.Require().Nil(tx.Exec(postgres.InsertSQL(tbl.Name, cols), vals...))

	// Act
	err = tx.Commit()

	// Assert
	suite.Require().Nil(err)

	var found Account
	suite.Require().Nil(suite.db.Query("accounts").Where("id", "=", acct.ID).First(&found))
	suite.Require().Equal("commit-test", found.Kind)
}

func (suite *DBTestSuite) TestRollback() {
	// Arrange
	tx := suite.db.Begin()
	acct := Account{Kind: "rollback-test"}
	acct.ID = uuid.NewString()

	tbl, err := schema.Parse(acct)
	suite.Require().Nil(err)
	cols, vals, err := tbl.InsertValues(acct)
	suite.Require().Nil(err)
	suite.Require().Nil(tx.Exec(postgres.InsertSQL(tbl.Name, cols), vals...))

	// Act
	err = tx.Rollback()

	// Assert
	suite.Require().Nil(err)

	var found Account
	err = suite.db.Query("accounts").Where("id", "=", acct.ID).First(&found)
	suite.Require().ErrorIs(err, slintrust.ErrNotFound)
}

func (suite *DBTestSuite) TestMigrateUp() {
	// Arrange
	ran := 0
	migrations := []postgres.Migration{{
		Key: "2026-08-31-test-migration",
		Executor: func(db *gorm.DB) error {
			ran++
			return db.Exec("CREATE TABLE IF NOT EXISTS widgets (id TEXT PRIMARY KEY)").Error
		},
	}}

	// Act
	err := postgres.MigrateUp(suite.db.DB(), migrations)

	// Assert
	suite.Require().Nil(err)
	suite.Require().Equal(1, ran)

	// Act
	err = postgres.MigrateUp(suite.db.DB(), migrations)

	// Assert
	suite.Require().Nil(err)
	suite.Require().Equal(1, ran)
}
