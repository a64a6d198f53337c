package postgres

import (
	"context"
	"database/sql"
	"time"

	"memberhub-backend/internal/domain"
	"memberhub-backend/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, password_hash, is_verified, verification_token, verification_code,
	verification_token_expiry, email_verified_at, password_reset_token, password_reset_code,
	password_reset_expiry, full_name, student_id, session, batch, department, is_graduated,
	passing_year, contact_number, COALESCE(address, ''), COALESCE(bio, ''), COALESCE(image_url, ''),
	COALESCE(image_public_id, ''), COALESCE(facebook, ''), COALESCE(github, ''), COALESCE(linkedin, ''),
	role, application_status, profile_status, approved_by, approved_at,
	COALESCE(rejection_reason, ''), requested_fast_verification_count,
	last_fast_verification_request, last_login, created_on, updated_on`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	u := &domain.User{}
	var (
		verificationExpiry sql.NullTime
		emailVerifiedAt    sql.NullTime
		resetExpiry        sql.NullTime
		passingYear        sql.NullInt32
		approvedBy         sql.NullInt32
		approvedAt         sql.NullTime
		lastFastRequest    sql.NullTime
		lastLogin          sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.IsVerified, &u.VerificationToken, &u.VerificationCode,
		&verificationExpiry, &emailVerifiedAt, &u.PasswordResetToken, &u.PasswordResetCode,
		&resetExpiry, &u.FullName, &u.StudentID, &u.Session, &u.Batch, &u.Department, &u.IsGraduated,
		&passingYear, &u.ContactNumber, &u.Address, &u.Bio, &u.ImageURL,
		&u.ImagePublicID, &u.SocialLinks.Facebook, &u.SocialLinks.GitHub, &u.SocialLinks.LinkedIn,
		&u.Role, &u.ApplicationStatus, &u.ProfileStatus, &approvedBy, &approvedAt,
		&u.RejectionReason, &u.RequestedFastVerificationCount,
		&lastFastRequest, &lastLogin, &u.CreatedOn, &u.UpdatedOn,
	)
	if err != nil {
		return nil, err
	}
	if verificationExpiry.Valid {
		u.VerificationTokenExpiry = &verificationExpiry.Time
	}
	if emailVerifiedAt.Valid {
		u.EmailVerifiedAt = &emailVerifiedAt.Time
	}
	if resetExpiry.Valid {
		u.PasswordResetExpiry = &resetExpiry.Time
	}
	if passingYear.Valid {
		u.PassingYear = &passingYear.Int32
	}
	if approvedBy.Valid {
		u.ApprovedBy = &approvedBy.Int32
	}
	if approvedAt.Valid {
		u.ApprovedAt = &approvedAt.Time
	}
	if lastFastRequest.Valid {
		u.LastFastVerificationRequest = &lastFastRequest.Time
	}
	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (email, password_hash, is_verified, verification_token,
	          verification_code, verification_token_expiry, full_name, student_id, session, batch,
	          department, is_graduated, passing_year, contact_number, address, bio, image_url,
	          image_public_id, facebook, github, linkedin, role, application_status, profile_status,
	          requested_fast_verification_count, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
	          $18, $19, $20, $21, $22, $23, $24, $25, $26, $27) RETURNING id`
	now := time.Now()
	u.CreatedOn = now
	u.UpdatedOn = now
	err := r.db.QueryRowContext(ctx, query,
		u.Email, u.PasswordHash, u.IsVerified, u.VerificationToken,
		u.VerificationCode, u.VerificationTokenExpiry, u.FullName, u.StudentID, u.Session, u.Batch,
		u.Department, u.IsGraduated, u.PassingYear, u.ContactNumber, u.Address, u.Bio, u.ImageURL,
		u.ImagePublicID, u.SocialLinks.Facebook, u.SocialLinks.GitHub, u.SocialLinks.LinkedIn,
		u.Role, u.ApplicationStatus, u.ProfileStatus,
		u.RequestedFastVerificationCount, u.CreatedOn, u.UpdatedOn,
	).Scan(&u.ID)
	if err != nil {
		if constraintContains(err, "student_id") {
			return repository.ErrDuplicateStudentID
		}
		if constraintContains(err, "email") {
			return repository.ErrDuplicateUserEmail
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, domain.NotFound("user not found")
	}
	return u, err
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err == sql.ErrNoRows {
		return nil, domain.NotFound("user not found")
	}
	return u, err
}

func (r *userRepository) GetByStudentID(ctx context.Context, studentID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE student_id = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, studentID))
	if err == sql.ErrNoRows {
		return nil, domain.NotFound("user not found")
	}
	return u, err
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `UPDATE users SET email=$1, password_hash=$2, is_verified=$3, verification_token=$4,
	          verification_code=$5, verification_token_expiry=$6, email_verified_at=$7,
	          password_reset_token=$8, password_reset_code=$9, password_reset_expiry=$10,
	          full_name=$11, student_id=$12, session=$13, batch=$14, department=$15,
	          is_graduated=$16, passing_year=$17, contact_number=$18, address=$19, bio=$20,
	          image_url=$21, image_public_id=$22, facebook=$23, github=$24, linkedin=$25,
	          role=$26, application_status=$27, profile_status=$28, approved_by=$29,
	          approved_at=$30, rejection_reason=$31, updated_on=$32
	          WHERE id=$33`
	u.UpdatedOn = time.Now()
	res, err := r.db.ExecContext(ctx, query,
		u.Email, u.PasswordHash, u.IsVerified, u.VerificationToken,
		u.VerificationCode, u.VerificationTokenExpiry, u.EmailVerifiedAt,
		u.PasswordResetToken, u.PasswordResetCode, u.PasswordResetExpiry,
		u.FullName, u.StudentID, u.Session, u.Batch, u.Department,
		u.IsGraduated, u.PassingYear, u.ContactNumber, u.Address, u.Bio,
		u.ImageURL, u.ImagePublicID, u.SocialLinks.Facebook, u.SocialLinks.GitHub, u.SocialLinks.LinkedIn,
		u.Role, u.ApplicationStatus, u.ProfileStatus, u.ApprovedBy,
		u.ApprovedAt, nullIfEmpty(u.RejectionReason), u.UpdatedOn,
		u.ID,
	)
	if err != nil {
		if constraintContains(err, "student_id") {
			return repository.ErrDuplicateStudentID
		}
		if constraintContains(err, "email") {
			return repository.ErrDuplicateUserEmail
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFound("user not found")
	}
	return nil
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id int32, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login=$1, updated_on=$1 WHERE id=$2`, at, id)
	return err
}

func (r *userRepository) RecordFastVerification(ctx context.Context, id int32, count int32, at time.Time) error {
	query := `UPDATE users SET requested_fast_verification_count=$1,
	          last_fast_verification_request=$2, updated_on=$2 WHERE id=$3`
	_, err := r.db.ExecContext(ctx, query, count, at, id)
	return err
}

func (r *userRepository) ListMembers(ctx context.Context) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_on DESC`
	return r.listUsers(ctx, query)
}

func (r *userRepository) ListPendingApplications(ctx context.Context) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
	          WHERE is_verified AND application_status = 'pending' ORDER BY created_on`
	return r.listUsers(ctx, query)
}

func (r *userRepository) ListAdminEmails(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT email FROM users WHERE role = 'admin'`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

func (r *userRepository) listUsers(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
