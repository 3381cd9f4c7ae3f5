package model

// Principal is the authenticated caller of an operation.  It is a closed
// set: AdminPrincipal, HospitalPrincipal and DonorPrincipal, each carrying
// the data specific to its role.
type Principal interface {
    Role() Role
    Account() User
    isPrincipal()
}

// AdminPrincipal is an administrator.
type AdminPrincipal struct {
    User User
}

// HospitalPrincipal is a hospital account with its hospital profile.
type HospitalPrincipal struct {
    User     User
    Hospital Hospital
}

// DonorPrincipal is a donor account with its donor profile.
type DonorPrincipal struct {
    User  User
    Donor Donor
}

func (p AdminPrincipal) Role() Role    { return RoleAdmin }
func (p AdminPrincipal) Account() User { return p.User }
func (AdminPrincipal) isPrincipal()    {}

func (p HospitalPrincipal) Role() Role    { return RoleHospital }
func (p HospitalPrincipal) Account() User { return p.User }
func (HospitalPrincipal) isPrincipal()    {}

func (p DonorPrincipal) Role() Role    { return RoleDonor }
func (p DonorPrincipal) Account() User { return p.User }
func (DonorPrincipal) isPrincipal()    {}
