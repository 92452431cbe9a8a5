// Package domain contains the core business entities, value objects, and
// domain rules of the competition service: accounts, competitions and their
// participants, newsletter subscribers and reviews. It is independent of any
// specific storage backend or delivery mechanism.
package domain
