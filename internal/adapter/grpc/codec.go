package grpc

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"user-profile-service/internal/usecase/user"
	pkgerrors "user-profile-service/pkg/errors"
)

// Struct keys, identical to the REST JSON field names.
const (
	keyID          = "id"
	keyFirebaseUID = "firebase_uid"
	keyEmail       = "email"
	keyFirstName   = "first_name"
	keyLastName    = "last_name"
	keyPhone       = "phone"
	keyPosition    = "position"
	keyFacebook    = "facebook"
	keyTwitter     = "twitter"
	keyGithub      = "github"
	keyDribbble    = "dribbble"
	keyLocation    = "location"
	keyState       = "state"
	keyPin         = "pin"
	keyZip         = "zip"
	keyTaxNo       = "tax_no"
	keyRole        = "role"
	keyGroup       = "group"
	keyCreatedAt   = "created_at"
	keyUpdatedAt   = "updated_at"
	keyQuery       = "query"
	keyPage        = "page"
	keyLimit       = "limit"
	keyUsers       = "users"
	keyPagination  = "pagination"
)

// stringField reads a string field. Absent and null both yield "".
func stringField(s *structpb.Struct, key string) (string, error) {
	p, err := optionalStringField(s, key)
	if err != nil || p == nil {
		return "", err
	}
	return *p, nil
}

// optionalStringField reads a nullable string field.
// Absent yields nil; null yields a pointer to "" so updates can clear the value.
func optionalStringField(s *structpb.Struct, key string) (*string, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return nil, nil
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		empty := ""
		return &empty, nil
	case *structpb.Value_StringValue:
		str := kind.StringValue
		return &str, nil
	default:
		return nil, pkgerrors.NewValidationError(key, "must be a string")
	}
}

// int64Field reads an integer sent either as a number or, as protojson does for int64, a string.
func int64Field(s *structpb.Struct, key string) (int64, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return 0, nil
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return 0, nil
	case *structpb.Value_NumberValue:
		n := kind.NumberValue
		if n != math.Trunc(n) || n >= math.MaxInt64 || n < math.MinInt64 {
			return 0, pkgerrors.NewValidationError(key, "must be an integer")
		}
		return int64(n), nil
	case *structpb.Value_StringValue:
		n, err := strconv.ParseInt(kind.StringValue, 10, 64)
		if err != nil {
			return 0, pkgerrors.NewValidationError(key, "must be an integer")
		}
		return n, nil
	default:
		return 0, pkgerrors.NewValidationError(key, "must be an integer")
	}
}

func optionalFields(s *structpb.Struct) (user.OptionalFields, error) {
	var (
		o   user.OptionalFields
		err error
	)
	targets := []struct {
		key string
		dst **string
	}{
		{keyPhone, &o.Phone},
		{keyPosition, &o.Position},
		{keyFacebook, &o.Facebook},
		{keyTwitter, &o.Twitter},
		{keyGithub, &o.Github},
		{keyDribbble, &o.Dribbble},
		{keyLocation, &o.Location},
		{keyState, &o.State},
		{keyPin, &o.Pin},
		{keyZip, &o.Zip},
		{keyTaxNo, &o.TaxNo},
	}
	for _, t := range targets {
		if *t.dst, err = optionalStringField(s, t.key); err != nil {
			return o, err
		}
	}
	return o, nil
}

func createRequestFromStruct(s *structpb.Struct) (user.CreateUserRequest, error) {
	var (
		req user.CreateUserRequest
		err error
	)
	required := []struct {
		key string
		dst *string
	}{
		{keyFirebaseUID, &req.FirebaseUID},
		{keyEmail, &req.Email},
		{keyFirstName, &req.FirstName},
		{keyLastName, &req.LastName},
		{keyRole, &req.Role},
		{keyGroup, &req.Group},
	}
	for _, r := range required {
		if *r.dst, err = stringField(s, r.key); err != nil {
			return req, err
		}
	}
	req.OptionalFields, err = optionalFields(s)
	return req, err
}

func updateRequestFromStruct(s *structpb.Struct) (user.UpdateUserRequest, error) {
	var (
		req user.UpdateUserRequest
		err error
	)
	if req.ID, err = int64Field(s, keyID); err != nil {
		return req, err
	}
	fields := []struct {
		key string
		dst **string
	}{
		{keyEmail, &req.Email},
		{keyFirstName, &req.FirstName},
		{keyLastName, &req.LastName},
		{keyRole, &req.Role},
		{keyGroup, &req.Group},
	}
	for _, f := range fields {
		if *f.dst, err = optionalStringField(s, f.key); err != nil {
			return req, err
		}
	}
	req.OptionalFields, err = optionalFields(s)
	return req, err
}

func nullable(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func userToMap(u user.User) map[string]any {
	return map[string]any{
		keyID:          u.ID,
		keyFirebaseUID: u.FirebaseUID,
		keyEmail:       u.Email,
		keyFirstName:   u.FirstName,
		keyLastName:    u.LastName,
		keyPhone:       nullable(u.Phone),
		keyPosition:    nullable(u.Position),
		keyFacebook:    nullable(u.Facebook),
		keyTwitter:     nullable(u.Twitter),
		keyGithub:      nullable(u.Github),
		keyDribbble:    nullable(u.Dribbble),
		keyLocation:    nullable(u.Location),
		keyState:       nullable(u.State),
		keyPin:         nullable(u.Pin),
		keyZip:         nullable(u.Zip),
		keyTaxNo:       nullable(u.TaxNo),
		keyRole:        u.Role,
		keyGroup:       u.Group,
		keyCreatedAt:   u.CreatedAt.UTC().Format(time.RFC3339Nano),
		keyUpdatedAt:   u.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func userToStruct(u user.User) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(userToMap(u))
	if err != nil {
		return nil, fmt.Errorf("encode user: %w", err)
	}
	return s, nil
}

func listResponseToStruct(resp *user.ListUsersResponse) (*structpb.Struct, error) {
	users := make([]any, len(resp.Users))
	for i, u := range resp.Users {
		users[i] = userToMap(u)
	}
	m := map[string]any{keyUsers: users}
	if p := resp.Pagination; p != nil {
		m[keyPagination] = map[string]any{
			"total":       p.Total,
			"page":        p.Page,
			"limit":       p.Limit,
			"total_pages": p.TotalPages,
		}
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("encode user list: %w", err)
	}
	return s, nil
}
