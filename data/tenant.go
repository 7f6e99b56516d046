package data

import "strconv"

// Tenant returns a tenant reference for id.
func Tenant(id int64) *int64 {
	return &id
}

// CloneTenant copies a tenant reference so callers never share the pointer.
func CloneTenant(tenantID *int64) *int64 {
	if tenantID == nil {
		return nil
	}
	id := *tenantID
	return &id
}

// SameTenant compares two optional tenants; nil only equals nil.
func SameTenant(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// TenantString formats a tenant for logs and bucket names.
func TenantString(tenantID *int64) string {
	if tenantID == nil {
		return "-"
	}
	return strconv.FormatInt(*tenantID, 10)
}
