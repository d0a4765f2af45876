package user

// Field names an attribute that a partial update may change.
// The values match the storage column names.
type Field string

const (
	FieldEmail     Field = "email"
	FieldFirstName Field = "first_name"
	FieldLastName  Field = "last_name"
	FieldPhone     Field = "phone"
	FieldPosition  Field = "position"
	FieldFacebook  Field = "facebook"
	FieldTwitter   Field = "twitter"
	FieldGithub    Field = "github"
	FieldDribbble  Field = "dribbble"
	FieldLocation  Field = "location"
	FieldState     Field = "state"
	FieldPin       Field = "pin"
	FieldZip       Field = "zip"
	FieldTaxNo     Field = "tax_no"
	FieldRole      Field = "role"
	FieldGroup     Field = "group"
)

// Patch holds the attributes changed by a partial update.
// A field that is absent keeps its stored value; a nil value stores NULL.
type Patch map[Field]*string

// Set records value for f.
func (p Patch) Set(f Field, value *string) {
	p[f] = value
}

// Has reports whether f is part of the patch.
func (p Patch) Has(f Field) bool {
	_, ok := p[f]
	return ok
}
