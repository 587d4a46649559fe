package main

type sessionKey string

const userIDSessionKey = sessionKey("userID")
const userRoleSessionKey = sessionKey("userRole")
