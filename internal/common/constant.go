package common

// AccessTokenHeaderName is the HTTP header used to carry the access token
// minted after a completed authentication sequence.
const AccessTokenHeaderName = "access_token"
