// Command example demonstrates defining tagged models,
// migrating their tables, and reading and writing records.
package main

import (
	"errors"
	"fmt"

	"github.com/emeraldlinks/slintrust"
	"github.com/emeraldlinks/slintrust/orm"
	"github.com/emeraldlinks/slintrust/postgres"
)

type User struct {
	slintrust.Model
	Name  string `db:"name"`
	Email string `db:"email" slint:"unique"`
}

func (User) TableName() string { return "userx_table" }

type Post struct {
	slintrust.Model
	Name  string `db:"name"`
	Email string `db:"email"`
}

func (Post) TableName() string { return "postsx_table" }

func main() {
	o := orm.New(postgres.NewCxnConfigFromEnv(slintrust.Development))
	if err := o.Register(&User{}, &Post{}); err != nil {
		fmt.Println("register:", err)
		return
	}

	if err := o.Connect(); err != nil {
		fmt.Println("connect:", err)
		return
	}
	defer o.Close()

	if err := o.Insert("userx_table", &User{Name: "Ada", Email: "ada@mail.com"}); err != nil {
		fmt.Println("insert:", err)
		return
	}
	if err := o.Insert("postsx_table", &Post{Name: "Ada", Email: "ada@mail.com"}); err != nil {
		fmt.Println("insert:", err)
		return
	}

	var ada User
	if err := o.First(&ada, "userx_table", "email", "ada@mail.com"); err != nil {
		fmt.Println("first:", err)
		return
	}
	fmt.Printf("%+v\n", ada)

	var allUsers []User
	if err := o.All(&allUsers, "userx_table"); err != nil {
		fmt.Println("all:", err)
		return
	}
	fmt.Println("All users:", allUsers)

	// The typed facade wraps the same tables with generics.
	posts, err := orm.NewTable[Post](o)
	if err != nil {
		fmt.Println("table:", err)
		return
	}

	matches, err := posts.Query().
		Like("name", "Ad").
		OrderBy("name", "ASC").
		Limit(10).
		All()
	if err != nil {
		fmt.Println("query:", err)
		return
	}
	for _, p := range matches {
		fmt.Printf("post %+v\n", p.Value)
	}

	if err := o.Exec("DELETE FROM userx_table WHERE name = ?", "Ada"); err != nil && !errors.Is(err, slintrust.ErrNotFound) {
		fmt.Println("exec:", err)
	}
}
