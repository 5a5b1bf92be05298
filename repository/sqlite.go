package repository

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"buildlink-backend/models"
)

// Store wraps a sqlite database and hands out the per-entity repositories.
type Store struct {
	db *sql.DB
}

func OpenStore(dbPath string) (*Store, error) {
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	if err := initSchema(db); err != nil {
		return nil, fmt.Errorf("error initializing schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Users() UserRepository         { return &sqliteUserRepo{db: s.db} }
func (s *Store) Messages() MessageRepository   { return &sqliteMessageRepo{db: s.db} }
func (s *Store) Projects() ProjectRepository   { return &sqliteProjectRepo{db: s.db} }
func (s *Store) Contracts() ContractRepository { return &sqliteContractRepo{db: s.db} }
func (s *Store) Reviews() ReviewRepository     { return &sqliteReviewRepo{db: s.db} }

func initSchema(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL COLLATE NOCASE,
			phone TEXT NOT NULL,
			password TEXT NOT NULL,
			role TEXT NOT NULL,
			active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sender_id INTEGER NOT NULL,
			receiver_id INTEGER NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (sender_id) REFERENCES users(id),
			FOREIGN KEY (receiver_id) REFERENCES users(id)
		)`,
		`CREATE TABLE IF NOT EXISTS projects (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			client_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			land_area REAL NOT NULL,
			building_type TEXT NOT NULL,
			budget REAL NOT NULL,
			timeline TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			assigned_to INTEGER,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (client_id) REFERENCES users(id)
		)`,
		`CREATE TABLE IF NOT EXISTS contracts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id INTEGER NOT NULL,
			client_id INTEGER NOT NULL,
			engineer_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			land_area REAL NOT NULL,
			building_type TEXT NOT NULL,
			budget REAL NOT NULL,
			timeline TEXT NOT NULL,
			terms_conditions TEXT NOT NULL,
			client_signature TEXT NOT NULL DEFAULT '',
			engineer_signature TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (project_id) REFERENCES projects(id)
		)`,
		`CREATE TABLE IF NOT EXISTS reviews (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			from_user_id INTEGER NOT NULL,
			to_user_id INTEGER NOT NULL,
			review_text TEXT NOT NULL,
			rating INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (from_user_id) REFERENCES users(id),
			FOREIGN KEY (to_user_id) REFERENCES users(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_pair ON messages(sender_id, receiver_id)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute schema query: %w", err)
		}
	}
	return nil
}

// --- users ---

type sqliteUserRepo struct {
	db *sql.DB
}

func (r *sqliteUserRepo) Create(user *models.User) (*models.User, error) {
	now := time.Now()
	result, err := r.db.Exec(
		"INSERT INTO users (first_name, last_name, email, phone, password, role, active, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		user.FirstName, user.LastName, user.Email, user.Phone, user.Password, user.Role, user.Active, now,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, fmt.Errorf("email already registered")
		}
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	u := *user
	u.ID = int(id)
	u.CreatedAt = now
	return &u, nil
}

func (r *sqliteUserRepo) FindByEmail(email string) (*models.User, error) {
	return r.scanOne(r.db.QueryRow(
		"SELECT id, first_name, last_name, email, phone, password, role, active, created_at FROM users WHERE email = ?",
		email,
	))
}

func (r *sqliteUserRepo) FindByID(id int) (*models.User, error) {
	return r.scanOne(r.db.QueryRow(
		"SELECT id, first_name, last_name, email, phone, password, role, active, created_at FROM users WHERE id = ?",
		id,
	))
}

func (r *sqliteUserRepo) scanOne(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.Password, &u.Role, &u.Active, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *sqliteUserRepo) List() ([]models.User, error) {
	rows, err := r.db.Query(
		"SELECT id, first_name, last_name, email, phone, password, role, active, created_at FROM users ORDER BY id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.Password, &u.Role, &u.Active, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *sqliteUserRepo) UpdatePassword(id int, hashedPwd string) error {
	result, err := r.db.Exec("UPDATE users SET password = ? WHERE id = ?", hashedPwd, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (r *sqliteUserRepo) SetActive(id int, active bool) error {
	result, err := r.db.Exec("UPDATE users SET active = ? WHERE id = ?", active, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// --- messages ---

type sqliteMessageRepo struct {
	db *sql.DB
}

func (r *sqliteMessageRepo) Save(msg *models.Message) (*models.Message, error) {
	if msg == nil {
		return nil, fmt.Errorf("nil message")
	}
	created := msg.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	result, err := r.db.Exec(
		"INSERT INTO messages (sender_id, receiver_id, content, created_at) VALUES (?, ?, ?, ?)",
		msg.SenderID, msg.ReceiverID, msg.Content, created,
	)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	m := *msg
	m.ID = int(id)
	m.CreatedAt = created
	return &m, nil
}

func (r *sqliteMessageRepo) FindByID(id int) (*models.Message, error) {
	var m models.Message
	err := r.db.QueryRow(
		"SELECT id, sender_id, receiver_id, content, created_at FROM messages WHERE id = ?",
		id,
	).Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *sqliteMessageRepo) ListBetween(userA, userB, limit int) ([]models.Message, error) {
	query := `
		SELECT id, sender_id, receiver_id, content, created_at
		FROM messages
		WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
		ORDER BY created_at ASC, id ASC`
	args := []any{userA, userB, userB, userA}
	if limit > 0 {
		// latest N, still returned in chronological order
		query = `
			SELECT id, sender_id, receiver_id, content, created_at FROM (
				SELECT id, sender_id, receiver_id, content, created_at
				FROM messages
				WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
				ORDER BY created_at DESC, id DESC
				LIMIT ?
			) ORDER BY created_at ASC, id ASC`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (r *sqliteMessageRepo) LatestBetween(userA, userB int) (*models.Message, error) {
	var m models.Message
	err := r.db.QueryRow(`
		SELECT id, sender_id, receiver_id, content, created_at
		FROM messages
		WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
		ORDER BY created_at DESC, id DESC
		LIMIT 1`,
		userA, userB, userB, userA,
	).Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *sqliteMessageRepo) Delete(id int) error {
	result, err := r.db.Exec("DELETE FROM messages WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// --- projects ---

type sqliteProjectRepo struct {
	db *sql.DB
}

const projectColumns = "id, client_id, title, land_area, building_type, budget, timeline, status, assigned_to, created_at, updated_at"

func (r *sqliteProjectRepo) Create(project *models.Project) (*models.Project, error) {
	now := time.Now()
	status := project.Status
	if status == "" {
		status = models.ProjectPending
	}
	result, err := r.db.Exec(
		"INSERT INTO projects (client_id, title, land_area, building_type, budget, timeline, status, assigned_to, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		project.ClientID, project.Title, project.LandArea, project.BuildingType,
		project.Budget, project.Timeline, status, nullableInt(project.AssignedTo), now, now,
	)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	p := *project
	p.ID = int(id)
	p.Status = status
	p.CreatedAt = now
	p.UpdatedAt = now
	return &p, nil
}

func (r *sqliteProjectRepo) FindByID(id int) (*models.Project, error) {
	row := r.db.QueryRow("SELECT "+projectColumns+" FROM projects WHERE id = ?", id)
	p, err := scanProject(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *sqliteProjectRepo) List() ([]models.Project, error) {
	return r.queryProjects("SELECT "+projectColumns+" FROM projects ORDER BY id", nil)
}

func (r *sqliteProjectRepo) Update(project *models.Project) error {
	now := time.Now()
	result, err := r.db.Exec(
		"UPDATE projects SET title = ?, land_area = ?, building_type = ?, budget = ?, timeline = ?, status = ?, assigned_to = ?, updated_at = ? WHERE id = ?",
		project.Title, project.LandArea, project.BuildingType, project.Budget,
		project.Timeline, project.Status, nullableInt(project.AssignedTo), now, project.ID,
	)
	if err != nil {
		return err
	}
	if err := requireAffected(result); err != nil {
		return err
	}
	project.UpdatedAt = now
	return nil
}

func (r *sqliteProjectRepo) Delete(id int) error {
	result, err := r.db.Exec("DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func (r *sqliteProjectRepo) Search(title, buildingType, status string) ([]models.Project, error) {
	query := "SELECT " + projectColumns + " FROM projects WHERE 1=1"
	var args []any
	if title != "" {
		query += " AND title LIKE ? COLLATE NOCASE"
		args = append(args, "%"+title+"%")
	}
	if buildingType != "" {
		query += " AND building_type = ?"
		args = append(args, buildingType)
	}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY id"
	return r.queryProjects(query, args)
}

func (r *sqliteProjectRepo) queryProjects(query string, args []any) ([]models.Project, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func scanProject(scan func(...any) error) (*models.Project, error) {
	var p models.Project
	var assigned sql.NullInt64
	err := scan(&p.ID, &p.ClientID, &p.Title, &p.LandArea, &p.BuildingType,
		&p.Budget, &p.Timeline, &p.Status, &assigned, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if assigned.Valid {
		v := int(assigned.Int64)
		p.AssignedTo = &v
	}
	return &p, nil
}

// --- contracts ---

type sqliteContractRepo struct {
	db *sql.DB
}

const contractColumns = "id, project_id, client_id, engineer_id, title, land_area, building_type, budget, timeline, terms_conditions, client_signature, engineer_signature, status, created_at, updated_at"

func (r *sqliteContractRepo) Create(contract *models.Contract) (*models.Contract, error) {
	now := time.Now()
	status := contract.Status
	if status == "" {
		status = models.ContractPending
	}
	result, err := r.db.Exec(
		"INSERT INTO contracts (project_id, client_id, engineer_id, title, land_area, building_type, budget, timeline, terms_conditions, client_signature, engineer_signature, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		contract.ProjectID, contract.ClientID, contract.EngineerID, contract.Title,
		contract.LandArea, contract.BuildingType, contract.Budget, contract.Timeline,
		contract.TermsConditions, contract.ClientSignature, contract.EngineerSignature,
		status, now, now,
	)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	c := *contract
	c.ID = int(id)
	c.Status = status
	c.CreatedAt = now
	c.UpdatedAt = now
	return &c, nil
}

func (r *sqliteContractRepo) FindByID(id int) (*models.Contract, error) {
	var c models.Contract
	err := r.db.QueryRow("SELECT "+contractColumns+" FROM contracts WHERE id = ?", id).Scan(
		&c.ID, &c.ProjectID, &c.ClientID, &c.EngineerID, &c.Title, &c.LandArea,
		&c.BuildingType, &c.Budget, &c.Timeline, &c.TermsConditions,
		&c.ClientSignature, &c.EngineerSignature, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *sqliteContractRepo) ListForUser(userID int) ([]models.Contract, error) {
	rows, err := r.db.Query(
		"SELECT "+contractColumns+" FROM contracts WHERE client_id = ? OR engineer_id = ? ORDER BY id",
		userID, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contracts []models.Contract
	for rows.Next() {
		var c models.Contract
		if err := rows.Scan(
			&c.ID, &c.ProjectID, &c.ClientID, &c.EngineerID, &c.Title, &c.LandArea,
			&c.BuildingType, &c.Budget, &c.Timeline, &c.TermsConditions,
			&c.ClientSignature, &c.EngineerSignature, &c.Status, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

func (r *sqliteContractRepo) Update(contract *models.Contract) error {
	now := time.Now()
	result, err := r.db.Exec(
		"UPDATE contracts SET terms_conditions = ?, client_signature = ?, engineer_signature = ?, status = ?, updated_at = ? WHERE id = ?",
		contract.TermsConditions, contract.ClientSignature, contract.EngineerSignature,
		contract.Status, now, contract.ID,
	)
	if err != nil {
		return err
	}
	if err := requireAffected(result); err != nil {
		return err
	}
	contract.UpdatedAt = now
	return nil
}

func (r *sqliteContractRepo) Delete(id int) error {
	result, err := r.db.Exec("DELETE FROM contracts WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// --- reviews ---

type sqliteReviewRepo struct {
	db *sql.DB
}

const reviewColumns = "id, from_user_id, to_user_id, review_text, rating, created_at, updated_at"

func (r *sqliteReviewRepo) Create(review *models.Review) (*models.Review, error) {
	now := time.Now()
	result, err := r.db.Exec(
		"INSERT INTO reviews (from_user_id, to_user_id, review_text, rating, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		review.FromUserID, review.ToUserID, review.ReviewText, review.Rating, now, now,
	)
	if err != nil {
		return nil, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	rv := *review
	rv.ID = int(id)
	rv.CreatedAt = now
	rv.UpdatedAt = now
	return &rv, nil
}

func (r *sqliteReviewRepo) FindByID(id int) (*models.Review, error) {
	return r.scanOne(r.db.QueryRow("SELECT "+reviewColumns+" FROM reviews WHERE id = ?", id))
}

func (r *sqliteReviewRepo) FindByPair(fromUserID, toUserID int) (*models.Review, error) {
	return r.scanOne(r.db.QueryRow(
		"SELECT "+reviewColumns+" FROM reviews WHERE from_user_id = ? AND to_user_id = ? LIMIT 1",
		fromUserID, toUserID,
	))
}

func (r *sqliteReviewRepo) scanOne(row *sql.Row) (*models.Review, error) {
	var rv models.Review
	err := row.Scan(&rv.ID, &rv.FromUserID, &rv.ToUserID, &rv.ReviewText, &rv.Rating, &rv.CreatedAt, &rv.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *sqliteReviewRepo) List() ([]models.Review, error) {
	return r.queryReviews("SELECT "+reviewColumns+" FROM reviews ORDER BY created_at DESC, id DESC", nil)
}

func (r *sqliteReviewRepo) ListForUser(toUserID int) ([]models.Review, error) {
	return r.queryReviews(
		"SELECT "+reviewColumns+" FROM reviews WHERE to_user_id = ? ORDER BY created_at DESC, id DESC",
		[]any{toUserID},
	)
}

func (r *sqliteReviewRepo) queryReviews(query string, args []any) ([]models.Review, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var rv models.Review
		if err := rows.Scan(&rv.ID, &rv.FromUserID, &rv.ToUserID, &rv.ReviewText, &rv.Rating, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}
	return reviews, rows.Err()
}

func (r *sqliteReviewRepo) Update(review *models.Review) error {
	now := time.Now()
	result, err := r.db.Exec(
		"UPDATE reviews SET review_text = ?, rating = ?, updated_at = ? WHERE id = ?",
		review.ReviewText, review.Rating, now, review.ID,
	)
	if err != nil {
		return err
	}
	if err := requireAffected(result); err != nil {
		return err
	}
	review.UpdatedAt = now
	return nil
}

func (r *sqliteReviewRepo) Delete(id int) error {
	result, err := r.db.Exec("DELETE FROM reviews WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// --- helpers ---

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
