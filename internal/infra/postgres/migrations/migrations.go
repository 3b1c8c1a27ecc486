package migrations

import (
	"github.com/uptrace/bun/migrate"
)

var Migrations = migrate.NewMigrations()

const createQuizzesSQL = `
CREATE TABLE IF NOT EXISTS quizzes (
	id         TEXT PRIMARY KEY,
	data       JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const createResultsSQL = `
CREATE TABLE IF NOT EXISTS results (
	id           BIGSERIAL PRIMARY KEY,
	quiz_id      TEXT NOT NULL,
	student_name TEXT NOT NULL,
	score        INT NOT NULL,
	total        INT NOT NULL,
	submitted_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS results_quiz_id_idx ON results (quiz_id, submitted_at)`

const createNotesSQL = `
CREATE TABLE IF NOT EXISTS notes (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	body       TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
