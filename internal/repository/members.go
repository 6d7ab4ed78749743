package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/bookshelf-labs/lending-service/internal/errs"
	"github.com/bookshelf-labs/lending-service/internal/model"
)

const memberColumns = "id, name, email, phone, created_at"

func (r *repository) CreateMember(ctx context.Context, req model.NewMember) (model.Member, error) {
	q, args, err := qb.Insert(membersTableName).
		Columns("name", "email", "phone").
		Values(req.Name, req.Email, req.Phone).
		Suffix("returning " + memberColumns).
		ToSql()
	if err != nil {
		return model.Member{}, err
	}

	var member model.Member
	if err := r.db.GetContext(ctx, &member, q, args...); err != nil {
		if isPgErrCode(err, pgerrcode.UniqueViolation) {
			return model.Member{}, errs.Conflict("email is already registered")
		}
		r.log.Error("CreateMember", zap.String("q", q), zap.Any("args", args))
		return model.Member{}, err
	}
	return member, nil
}

func (r *repository) GetMember(ctx context.Context, id int) (model.Member, error) {
	q, args, err := qb.Select(memberColumns).
		From(membersTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Member{}, err
	}

	var member model.Member
	if err := r.db.GetContext(ctx, &member, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Member{}, errs.NotFound("member")
		}
		return model.Member{}, err
	}
	return member, nil
}

// memberUpdateSet collects only the provided fields, so omitted fields
// keep their stored values.
func memberUpdateSet(req model.UpdateMember) map[string]interface{} {
	set := map[string]interface{}{}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Email != nil {
		set["email"] = *req.Email
	}
	if req.Phone != nil {
		set["phone"] = *req.Phone
	}
	return set
}

func (r *repository) UpdateMember(ctx context.Context, id int, req model.UpdateMember) error {
	set := memberUpdateSet(req)
	if len(set) == 0 {
		_, err := r.GetMember(ctx, id)
		return err
	}

	q, args, err := qb.Update(membersTableName).
		SetMap(set).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		if isPgErrCode(err, pgerrcode.UniqueViolation) {
			return errs.Conflict("email is already registered")
		}
		r.log.Error("UpdateMember", zap.String("q", q), zap.Any("args", args))
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errs.NotFound("member")
	}
	return nil
}

// DeleteMember refuses to remove a member who still holds a book.
func (r *repository) DeleteMember(ctx context.Context, id int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	var memberID int
	if err := tx.GetContext(ctx, &memberID,
		`select id from members where id = $1 for update`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errs.NotFound("member")
		}
		return err
	}

	var open bool
	if err := tx.GetContext(ctx, &open,
		`select exists(select 1 from borrowings where member_id = $1 and return_date is null)`, id); err != nil {
		return err
	}
	if open {
		return errs.Conflict("member has an open borrowing")
	}

	if _, err := tx.ExecContext(ctx, `delete from members where id = $1`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *repository) ListMembers(ctx context.Context, params model.MemberSearchParams) ([]model.Member, error) {
	q, args, err := buildListMembersQuery(params)
	if err != nil {
		return nil, err
	}
	r.log.Debug("ListMembers", zap.String("query", q), zap.Any("args", args))

	members := make([]model.Member, 0)
	if err := r.db.SelectContext(ctx, &members, q, args...); err != nil {
		return nil, err
	}
	return members, nil
}
