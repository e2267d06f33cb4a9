package errors

// 에러 코드 상수 정의
// 형식: CATEGORY_SPECIFIC_DETAIL
// 프론트엔드에서 이 코드를 기반으로 메시지를 매핑함

const (
	// ==================== 인증 (AUTH_) ====================
	AuthUnauthorized = "AUTH_UNAUTHORIZED"   // 로그인 필요
	AuthUserNotFound = "AUTH_USER_NOT_FOUND" // ID/이메일 불일치 (구분하지 않음)
	AuthTokenExpired = "AUTH_TOKEN_EXPIRED"  // 세션 만료
	AuthTokenInvalid = "AUTH_TOKEN_INVALID"  // 잘못된 토큰
	AuthTokenRevoked = "AUTH_TOKEN_REVOKED"  // 로그아웃된 토큰
	AuthNameExists   = "AUTH_NAME_EXISTS"    // 이미 존재하는 이름
	AuthInvalidEmail = "AUTH_INVALID_EMAIL"  // 이메일 형식 오류

	// ==================== 인가/권한 (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN" // 접근 권한 없음
	AuthzHostOnly  = "AUTHZ_HOST_ONLY" // 방장만 가능

	// ==================== 검증 (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT" // 잘못된 입력
	ValidationInvalidID    = "VALIDATION_INVALID_ID"    // 잘못된 ID
	ValidationInvalidRange = "VALIDATION_INVALID_RANGE" // 범위 초과
	ValidationRequired     = "VALIDATION_REQUIRED"      // 필수 항목

	// ==================== 리소스 (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"      // 리소스 없음
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS" // 이미 존재
	ResourceConflict      = "RESOURCE_CONFLICT"       // 충돌

	// ==================== 맛집 (RESTAURANT_) ====================
	RestaurantNotFound        = "RESTAURANT_NOT_FOUND"        // 맛집 없음
	RestaurantExists          = "RESTAURANT_EXISTS"           // 이름/주소 중복
	RestaurantInvalidCategory = "RESTAURANT_INVALID_CATEGORY" // 잘못된 카테고리
	MenuItemNotFound          = "MENU_ITEM_NOT_FOUND"         // 메뉴 없음

	// ==================== 지오코딩 (GEOCODE_) ====================
	GeocodeNotFound = "GEOCODE_NOT_FOUND" // 주소를 찾을 수 없음

	// ==================== 리뷰 (REVIEW_) ====================
	ReviewNotFound       = "REVIEW_NOT_FOUND"        // 리뷰 없음
	ReviewInvalidRating  = "REVIEW_INVALID_RATING"   // 잘못된 평점
	ReviewParentNotFound = "REVIEW_PARENT_NOT_FOUND" // 부모 댓글 없음
	ReviewParentMismatch = "REVIEW_PARENT_MISMATCH"  // 부모 댓글이 다른 대상에 속함

	// ==================== 밥약 (PARTY_) ====================
	PartyNotFound        = "PARTY_NOT_FOUND"         // 존재하지 않는 밥약
	PartyFull            = "PARTY_FULL"              // 정원 초과
	PartyAlreadyJoined   = "PARTY_ALREADY_JOINED"    // 이미 참여 중
	PartyClosed          = "PARTY_CLOSED"            // 마감된 밥약
	PartyHostCannotLeave = "PARTY_HOST_CANNOT_LEAVE" // 방장 나가기 불가
	PartyBelowCurrent    = "PARTY_BELOW_CURRENT"     // 현재 인원보다 작은 정원

	// ==================== 업로드 (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE" // 잘못된 파일 형식
	UploadFailed          = "UPLOAD_FAILED"            // 업로드 실패

	// ==================== 내부 오류 (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"   // 서버 오류
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR" // DB 오류
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"   // 외부 API 오류
)
