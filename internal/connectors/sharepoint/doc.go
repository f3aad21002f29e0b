// Package sharepoint implements the remote document store port against a
// SharePoint document library reached through the Microsoft Graph drive API.
//
// This is the protocol layer of the evidence synchronization engine: folder
// materialization, direct and chunked/resumable file transfer, view-URL
// resolution across the several incompatible URL shapes the store produces,
// and reconciliation of assessment fields stored under historically varying
// field names. Every remote call goes through the backoff retrier and the
// rate limiter.
package sharepoint
