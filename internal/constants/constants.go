package constants

// Centralized constants for headers, env keys and external integrations.
const (
	// Environment variable keys
	EnvConfigPath   = "GAMEDASH_CONFIG"
	EnvDBPath       = "GAMEDASH_DB"
	EnvServerAddr   = "GAMEDASH_ADDR"
	EnvJWTSecret    = "GAMEDASH_JWT_SECRET"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"

	// Client side
	EnvServerURL = "GAMEDASH_URL"
	EnvToken     = "GAMEDASH_TOKEN"
	EnvStatePath = "GAMEDASH_STATE"

	DefaultConfigPath = "./gamedash.yaml"
	DefaultServerURL  = "http://127.0.0.1:8080"

	// HTTP headers and content types
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"

	ContentTypeJSON = "application/json"
	ContentTypePNG  = "image/png"

	CacheControlHeader  = "Cache-Control"
	CacheControlNoCache = "no-cache, no-store, must-revalidate"

	BearerPrefix = "Bearer "

	// OpenAI
	OpenAIBaseURL             = "https://api.openai.com"
	OpenAIChatCompletionsPath = "/v1/chat/completions"
	OpenAIChatModel           = "gpt-4o-mini"

	// Roblox thumbnails API
	RobloxThumbnailsBaseURL = "https://thumbnails.roblox.com"
	RobloxAssetThumbPath    = "/v1/assets"
	RobloxThumbSize         = "420x420"

	ThumbnailSize = 256
)

// Routes used by the backend router
const (
	RouteAPIPrefix       = "/api"
	RouteMetrics         = "/metrics"
	RouteHealth          = "/health"
	RouteVersion         = "/version"
	RouteEvents          = "/events"
	RouteGames           = "/games"
	RouteGameByRef       = "/games/:game"
	RouteGameExport      = "/games/:game/export"
	RouteGameNPCLookup   = "/games/:game/npcs/lookup"
	RouteGameAsset       = "/games/:game/assets/:asset_id"
	RouteGameAssetThumb  = "/games/:game/assets/:asset_id/thumbnail.png"
	RouteGameDescribe    = "/games/:game/assets/describe"
	RouteAssets          = "/assets"
	RouteAssetsCreate    = "/assets/create"
	RouteNPCs            = "/npcs"
	RouteNPCByID         = "/npcs/:npc_id"
	RoutePlayers         = "/players"
	RoutePlayerByID      = "/players/:player_id"
	ParamGame            = "game"
	ParamAssetID         = "asset_id"
	ParamNPCID           = "npc_id"
	ParamPlayerID        = "player_id"
	QueryGameID          = "game_id"
	QueryType            = "type"
	QueryName            = "name"
	QueryForce           = "force"
	QueryAccessToken     = "access_token"
	FormFieldFile        = "file"
	ContextKeySubject    = "subject"
	ThumbnailFileSuffix  = ".png"
	ExportDataSubdir     = "src/data"
	DefaultAssetType     = "Model"
	NPCAssetType         = "NPC"
	DefaultResponseRange = 20
)

// Common JSON response keys
const (
	JSONKeyError   = "error"
	JSONKeyDetail  = "detail"
	JSONKeyMessage = "message"
	JSONKeyStatus  = "status"
	JSONKeyAssets  = "assets"
	JSONKeyNPCs    = "npcs"
	JSONKeyPlayers = "players"
)

// Common error messages used across API handlers
const (
	ErrInvalidRequest     = "Invalid request"
	ErrInvalidGameID      = "Invalid game ID"
	ErrGameNotFound       = "Game not found"
	ErrGameIDRequired     = "game_id is required"
	ErrSlugTaken          = "A game with this title already exists"
	ErrTitleRequired      = "Title is required"
	ErrTitleExceeds       = "Title exceeds 128 characters"
	ErrDescriptionExceeds = "Description exceeds 2048 characters"
	ErrFailedFetchGames   = "Failed to fetch games"
	ErrFailedCreateGame   = "Failed to create game"
	ErrFailedUpdateGame   = "Failed to update game"
	ErrFailedDeleteGame   = "Failed to delete game"
	ErrFailedExport       = "Failed to export game data"
	ErrExportDisabled     = "Export is disabled on this server"

	ErrAssetNotFound      = "Asset not found"
	ErrAssetExists        = "Asset already exists in this game"
	ErrAssetInUse         = "Asset is referenced by NPCs"
	ErrAssetFieldsMissing = "name and asset_id are required"
	ErrFailedFetchAssets  = "Failed to fetch assets"
	ErrFailedSaveAsset    = "Failed to save asset"
	ErrFailedDeleteAsset  = "Failed to delete asset"
	ErrInvalidModelFile   = "Only .rbxm and .rbxmx files are accepted"
	ErrModelFileTooLarge  = "Model file is too large"
	ErrThumbnailFailed    = "Failed to fetch asset thumbnail"
	ErrDescribeDisabled   = "Description generation is not configured"
	ErrDescribeFailed     = "Failed to generate descriptions"

	ErrNPCNotFound      = "NPC not found"
	ErrNPCFieldsMissing = "display_name and asset_id are required"
	ErrUnknownAsset     = "asset_id does not reference an asset of this game"
	ErrNPCExists        = "NPC already exists"
	ErrFailedFetchNPCs  = "Failed to fetch NPCs"
	ErrFailedSaveNPC    = "Failed to save NPC"
	ErrFailedDeleteNPC  = "Failed to delete NPC"
	ErrNameRequired     = "name query parameter is required"

	ErrPlayerNotFound       = "Player not found"
	ErrDescriptionRequired  = "description is required"
	ErrPlayerIDRequired     = "player_id is required"
	ErrStorageUnavailable   = "Storage unavailable"
	ErrNPCLookupFailed      = "Failed to look up NPC"
	ErrFailedFetchPlayers   = "Failed to fetch players"
	ErrFailedSavePlayer     = "Failed to save player"
	ErrFailedDeletePlayer   = "Failed to delete player"
	ErrAuthRequired         = "Authentication required"
	ErrInvalidToken         = "Invalid token"
	ErrFailedUpgradeSocket  = "Failed to open event stream"
	ErrEnvNotSetFmt         = "%s not set on server"
	ErrUnexpectedStatusFmt  = "unexpected status %d"
	ErrInvalidThumbnailResp = "thumbnail API returned no image"
)

// Logging field names
const (
	LogFieldGameID   = "game_id"
	LogFieldGameSlug = "game"
	LogFieldAssetID  = "asset_id"
	LogFieldNPCID    = "npc_id"
	LogFieldPlayerID = "player_id"
	LogFieldSource   = "source"
	LogFieldName     = "name"
	LogFieldKey      = "key"
	LogFieldAddr     = "addr"
	LogFieldPath     = "path"
	LogFieldStatus   = "status"
	LogFieldMethod   = "method"
	LogFieldLatency  = "latency"
	LogFieldCount    = "count"
)
