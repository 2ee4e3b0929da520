// Dramalog - Drama Catalog, Reviews and Forums
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dramalog

package authz

// rbacModel is path-based RBAC. Objects are URL paths matched with keyMatch,
// actions are read, write or delete.
const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch(r.obj, p.obj) && regexMatch(r.act, p.act)
`

// defaultPolicy grants members the signed-in API surface and admins the
// catalog editing endpoints. Admin inherits user.
const defaultPolicy = `
# members
p, user, /api/v1/me/*, (read)|(write)|(delete)
p, user, /api/v1/auth/*, (read)|(write)
p, user, /api/v1/dramas/*, (read)|(write)|(delete)
p, user, /api/v1/boards/*, (read)|(write)
p, user, /api/v1/articles/*, (read)|(write)|(delete)

# catalog editors
p, admin, /api/v1/admin/*, (read)|(write)|(delete)

g, admin, user
`
