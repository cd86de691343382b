package orm_test

import (
	"os"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/emeraldlinks/slintrust"
	"github.com/emeraldlinks/slintrust/logger"
	"github.com/emeraldlinks/slintrust/orm"
	"github.com/emeraldlinks/slintrust/postgres"
)

type OrmTestSuite struct {
	suite.Suite

	orm *orm.ORM
}

func TestRunOrmSuite(t *testing.T) {
	suite.Run(t, new(OrmTestSuite))
}

func (suite *OrmTestSuite) SetupSuite() {
	_ = godotenv.Load("../.env")

	if os.Getenv("DATABASE_URL") == "" && os.Getenv("DATABASE_HOST") == "" {
		suite.T().Skip("set DATABASE_URL or DATABASE_HOST to run database tests")
	}

	o := orm.New(
		postgres.NewCxnConfigFromEnv(slintrust.Testing),
		orm.WithEnv(slintrust.Testing),
		orm.WithLogger(logger.New(logger.WithLevel(logger.LogLevelError))),
	)
	suite.Require().Nil(o.Register(&Account{}, &User{}))
	suite.Require().Nil(o.Connect())

	suite.orm = o
}

func (suite *OrmTestSuite) TearDownTest() {
	suite.Require().Nil(postgres.WipeDB(suite.orm.DB().DB()))
}

func (suite *OrmTestSuite) TearDownSuite() {
	suite.Require().Nil(suite.orm.Close())
}

func (suite *OrmTestSuite) TestConnectRunsMigrationsAfterDDL() {
	// Arrange: a migration touching a registered table only works
	// when the schema DDL has already run on a fresh database.
	ran := false
	o := orm.New(
		postgres.NewCxnConfigFromEnv(slintrust.Testing),
		orm.WithEnv(slintrust.Testing),
		orm.WithLogger(logger.New(logger.WithLevel(logger.LogLevelError))),
		orm.WithMigrations(postgres.Migration{
			Key: "2026-08-31-add-users-nickname",
			Executor: func(db *gorm.DB) error {
				ran = true
				return db.Exec("ALTER TABLE users ADD COLUMN IF NOT EXISTS nickname TEXT").Error
			},
		}),
	)
	suite.Require().Nil(o.Register(&Account{}, &User{}))

	// Act
	err := o.Connect()

	// Assert
	suite.Require().Nil(err)
	suite.Require().True(ran)
	suite.Require().Nil(o.Close())
}

func (suite *OrmTestSuite) TestInsertAndFirst() {
	// Arrange
	user := User{Name: "Ada", Email: "ada@example.com"}

	// Act
	err := suite.orm.Insert("users", &user)

	// Assert
	suite.Require().Nil(err)

	var found User
	suite.Require().Nil(suite.orm.First(&found, "users", "email", "ada@example.com"))
	suite.Require().Equal("Ada", found.Name)
	suite.Require().True(found.Exists())
	suite.Require().NotEmpty(found.ID)

	// Act
	err = suite.orm.First(&found, "users", "email", "nobody@example.com")

	// Assert
	suite.Require().ErrorIs(err, slintrust.ErrNotFound)
}

func (suite *OrmTestSuite) TestFirstUnknownColumn() {
	// Act
	var found User
	err := suite.orm.First(&found, "users", "shoe_size", 44)

	// Assert
	suite.Require().ErrorIs(err, slintrust.ErrNotValid)
}

func (suite *OrmTestSuite) TestFindAndAll() {
	// Arrange
	for _, u := range []User{
		{Name: "Ada", Email: "ada@example.com"},
		{Name: "Edsger", Email: "edsger@example.com"},
		{Name: "Grace", Email: "grace@example.com"},
	} {
		u := u
		suite.Require().Nil(suite.orm.Insert("users", &u))
	}

	// Act
	var adas []User
	err := suite.orm.Find(&adas, "users", "name", "Ada")

	// Assert
	suite.Require().Nil(err)
	suite.Require().Len(adas, 1)

	// Act
	var none []User
	err = suite.orm.Find(&none, "users", "name", "Nobody")

	// Assert
	suite.Require().Nil(err)
	suite.Require().Empty(none)

	// Act
	var all []User
	err = suite.orm.All(&all, "users")

	// Assert
	suite.Require().Nil(err)
	suite.Require().Len(all, 3)
}

func (suite *OrmTestSuite) TestUpdate() {
	// Arrange
	user := User{Name: "Ada", Email: "ada@example.com"}
	suite.Require().Nil(suite.orm.Insert("users", &user))

	var inserted User
	suite.Require().Nil(suite.orm.First(&inserted, "users", "email", "ada@example.com"))

	inserted.Name = "Ada Lovelace"

	// Act
	err := suite.orm.Update("users", "email", "ada@example.com", &inserted)

	// Assert
	suite.Require().Nil(err)

	var updated User
	suite.Require().Nil(suite.orm.First(&updated, "users", "email", "ada@example.com"))
	suite.Require().Equal("Ada Lovelace", updated.Name)
}

func (suite *OrmTestSuite) TestUpdateColumns() {
	// Arrange
	user := User{Name: "Ada", Email: "ada@example.com"}
	suite.Require().Nil(suite.orm.Insert("users", &user))

	// Act
	err := suite.orm.UpdateColumns("users", "email", "ada@example.com", postgres.Updates{"name": "Countess"})

	// Assert
	suite.Require().Nil(err)

	var updated User
	suite.Require().Nil(suite.orm.First(&updated, "users", "email", "ada@example.com"))
	suite.Require().Equal("Countess", updated.Name)

	// Act
	err = suite.orm.UpdateColumns("users", "email", "ada@example.com", postgres.Updates{"shoe_size": 44})

	// Assert
	suite.Require().ErrorIs(err, slintrust.ErrNotValid)
}

func (suite *OrmTestSuite) TestDeleteAndExists() {
	// Arrange
	user := User{Name: "Ada", Email: "ada@example.com"}
	suite.Require().Nil(suite.orm.Insert("users", &user))

	// Act
	exists, err := suite.orm.Exists("users", "email", "ada@example.com")

	// Assert
	suite.Require().Nil(err)
	suite.Require().True(exists)

	// Act
	err = suite.orm.Delete("users", "email", "ada@example.com")

	// Assert
	suite.Require().Nil(err)

	exists, err = suite.orm.Exists("users", "email", "ada@example.com")
	suite.Require().Nil(err)
	suite.Require().False(exists)

	// Act
	err = suite.orm.Delete("users", "email", "ada@example.com")

	// Assert
	suite.Require().ErrorIs(err, slintrust.ErrNotFound)
}

func (suite *OrmTestSuite) TestRawPassthrough() {
	// Arrange
	user := User{Name: "Ada", Email: "ada@example.com"}
	suite.Require().Nil(suite.orm.Insert("users", &user))

	// Act
	var count int64
	err := suite.orm.Raw(&count, "SELECT COUNT(*) FROM users")

	// Assert
	suite.Require().Nil(err)
	suite.Require().Equal(int64(1), count)

	// Act
	err = suite.orm.Exec("DELETE FROM users WHERE email = ?", "ada@example.com")

	// Assert
	suite.Require().Nil(err)
}

func (suite *OrmTestSuite) TestTypedTable() {
	// Arrange
	users, err := orm.NewTable[User](suite.orm)
	suite.Require().Nil(err)

	suite.Require().Nil(users.Insert(&User{Name: "Ada", Email: "ada@example.com"}))
	suite.Require().Nil(users.Insert(&User{Name: "Grace", Email: "grace@example.com"}))

	// Act
	record, err := users.Get("email", "ada@example.com")

	// Assert
	suite.Require().Nil(err)
	suite.Require().NotNil(record)
	suite.Require().Equal("Ada", record.Value.Name)

	// Act
	missing, err := users.Get("email", "nobody@example.com")

	// Assert
	suite.Require().Nil(err)
	suite.Require().Nil(missing)

	// Act
	all, err := users.GetAll()

	// Assert
	suite.Require().Nil(err)
	suite.Require().Len(all, 2)
}

func (suite *OrmTestSuite) TestTypedQuery() {
	// Arrange
	users, err := orm.NewTable[User](suite.orm)
	suite.Require().Nil(err)

	for _, name := range []string{"Ada", "Adele", "Grace"} {
		suite.Require().Nil(users.Insert(&User{Name: name, Email: name + "@example.com"}))
	}

	// Act
	matches, err := users.Query().
		Like("name", "Ad").
		OrderBy("name", "ASC").
		Limit(10).
		All()

	// Assert
	suite.Require().Nil(err)
	suite.Require().Len(matches, 2)
	suite.Require().Equal("Ada", matches[0].Value.Name)

	// Act
	first, err := users.Query().Where("name", "=", "Grace").First()

	// Assert
	suite.Require().Nil(err)
	suite.Require().NotNil(first)

	// Act
	value, err := users.Query().Where("name", "=", "Alan").FirstValue()

	// Assert
	suite.Require().ErrorIs(err, slintrust.ErrNotFound)
	suite.Require().Empty(value.Name)

	// Act
	none, err := users.Query().Where("name", "=", "Alan").All()

	// Assert
	suite.Require().Nil(err)
	suite.Require().Empty(none)
}

func (suite *OrmTestSuite) TestRecordUpdateAndDelete() {
	// Arrange
	users, err := orm.NewTable[User](suite.orm)
	suite.Require().Nil(err)

	suite.Require().Nil(users.Insert(&User{Name: "Ada", Email: "ada@example.com"}))

	record, err := users.Get("email", "ada@example.com")
	suite.Require().Nil(err)
	suite.Require().NotNil(record)

	// Act
	fresh, err := record.Update(postgres.Updates{"name": "Ada Lovelace"})

	// Assert
	suite.Require().Nil(err)
	suite.Require().Equal("Ada Lovelace", fresh.Name)
	suite.Require().Equal("Ada Lovelace", record.Value.Name)

	// Act
	err = record.Delete()

	// Assert
	suite.Require().Nil(err)

	gone, err := users.Get("email", "ada@example.com")
	suite.Require().Nil(err)
	suite.Require().Nil(gone)
}
