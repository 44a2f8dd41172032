package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed init.sql
var initSQL string

//go:embed memos.sql
var memosSQL string

// Function list for verification
var MemosFunctions = []string{
	"init_memos",
	"insert_memo",
	"select_memo",
	"select_memos_by_user",
	"select_memos_by_search",
	"select_memos_by_similarity",
	"update_memo_tags",
	"delete_memo",
}

// Init intializes db extensions
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}

	log.Println("Database extensions initialized successfully")
	return nil
}

// LoadMemosSql loads memo-related SQL functions
func LoadMemosSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, MemosFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing memos functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(memosSQL)
	if err != nil {
		return fmt.Errorf("error executing memos SQL: %w", err)
	}

	exist, err := checkFunctions(db, MemosFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL memos functions loaded successfully")
	return nil
}

// checkFunctions verifies that all required functions exist in the database
func checkFunctions(db *sql.DB, sqlFunctions []string) (bool, error) {
	var allExist bool
	for _, f := range sqlFunctions {
		err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);`,
			f,
		).Scan(&allExist)
		if err != nil {
			return false, fmt.Errorf("error checking existence of function %s: %w", f, err)
		}
		if !allExist {
			log.Printf("Function %s does not exist", f)
			break
		}
	}
	return allExist, nil
}
