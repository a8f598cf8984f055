package errors

var (
	// Domain errors returned by the services
	ErrPostNotFound         = NotFound("Post not found")
	ErrUserNotFound         = NotFound("User not found")
	ErrNotificationNotFound = NotFound("Notification not found")
	ErrPostUpdateForbidden  = Forbidden("You do not have permission to update this post")
	ErrPostDeleteForbidden  = Forbidden("You do not have permission to delete this post")
	ErrCannotFollowYourself = FailedPrecondition("Cannot follow yourself")
	ErrAlreadyFollowing     = AlreadyExists("Already following this user")
	ErrNotFollowing         = FailedPrecondition("Not following this user")
	ErrInvalidCursor        = InvalidArg("Invalid cursor")
	ErrUnauthenticated      = Unauthorized("Unauthorized")
)

func ErrStorage(cause error) error {
	return Wrap(CodeInternal, "storage failure", cause)
}
