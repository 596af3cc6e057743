package sys

// @core
const (
	MsgConfigFailedToLoad     = "Failed to load config: %v"
	MsgConfigMissingToken     = "DISCORD_TOKEN is not set in .env file"
	MsgConfigInvalidGuildID   = "invalid GUILD_ID: must be a valid Snowflake"
	MsgConfigInvalidInterval  = "invalid STATUS_INTERVAL: %w"
	MsgConfigIntervalTooShort = "STATUS_INTERVAL %v is too short (minimum 10s)"
	MsgDaemonStarting         = "Starting..."
	MsgDaemonShutdown         = "Shutting down all daemons..."
	MsgBotStarting            = "Starting %s..."
	MsgBotReady               = "%s is ready! (ID: %s) (PID: %d) (Took: %dms)"
	MsgBotShutdown            = "Shutting down %s..."
	MsgBotKillingOld          = "Killing running instance... (PID: %d)"
	MsgBotStubbornOld         = "Old process %d is stubborn. Sending SIGKILL..."
	MsgBotOldTerminated       = "Old instance terminated."
	MsgBotRegisterFail        = "Command registration failed: %v"
	MsgBotSkipReg             = "Skipping command registration as requested."
	MsgBotClientCreateFail    = "failed to create Discord client: %w"
	MsgBotGatewayFail         = "failed to open gateway: %w"
	MsgInitializing           = "Initializing %s..."
	MsgDatabaseInitFail       = "Failed to initialize database: %v"
	MsgPIDOpenFail            = "Failed to open PID file: %v"
	MsgPIDLockFail            = "Failed to lock PID file: %v"
	MsgPanicFatal             = "\n[FATAL] %s\n"
	MsgGenericError           = "%v"
	BotPIDFile                = ".bot.pid"
)

// @database
const (
	MsgDatabaseInitSuccess = "Database initialized successfully"
	MsgDatabaseTableError  = "failed to create table: %w"
	MsgDatabasePragmaError = "failed to set pragma %s: %w"
	MsgDatabaseCloseError  = "Failed to close database: %v"
	MsgDBSaveRecordFail    = "failed to save giveaway record %s: %w"
)

// @loader
const (
	MsgLoaderSyncCommands   = "Syncing %s commands..."
	MsgLoaderUpToDate       = "[LOADER] Commands are up to date. (Hash: %s)"
	MsgLoaderDevStarting    = "[DEV] Registering commands to guild: %s"
	MsgLoaderDevRegistered  = "[DEV] Registered: %s"
	MsgLoaderDevFail        = "[DEV] Registration failed: %w"
	MsgLoaderProdStarting   = "[PROD] Registering commands globally..."
	MsgLoaderProdRegistered = "[PROD] Registered: %s"
	MsgLoaderProdFail       = "[PROD] Global registration failed: %w"
	MsgLoaderCleanup        = "[CLEANUP] Removing commands from previous dev guild: %s"
	MsgLoaderInvalidGuildID = "invalid GUILD_ID: %w"
	MsgLoaderPanicRecovered = "Panic recovered in handler: %v"
)

// @status
const (
	MsgStatusUpdateFail      = "Presence update failed: %v"
	MsgStatusRotated         = "Status set to: \"%s\" (Next update in %v)"
	MsgStatusRotatorShutdown = "Stopping status rotator..."
	MsgGiveawaysClosing      = "Closing open giveaways..."
	MsgStatusRunningOne      = "🎉 1 giveaway running"
	MsgStatusRunningMany     = "🎉 %d giveaways running"
	MsgStatusDrawn           = "🏆 %d giveaways drawn"
)

// @giveaway
const (
	// System logs
	MsgGiveawayOpened          = "Opened %s in channel %s: \"%s\" (%d winner(s), %s, entry %s)"
	MsgGiveawayEntry           = "Entry from %s on %s (%d participant(s))"
	MsgGiveawayClosed          = "Closed %s with %d participant(s)"
	MsgGiveawayDiscarded       = "Discarded %s without drawing"
	MsgGiveawayDiscardedAll    = "Discarded %d open giveaway(s)"
	MsgGiveawayReportFail      = "Failed to report result of %s: %v"
	MsgGiveawayArchiveFail     = "Failed to archive %s: %v"
	MsgGiveawayFetchFail       = "Reaction details unavailable for user %s, entry dropped: %v"
	MsgGiveawayEmojiFetchFail  = "Failed to fetch guild emojis for %s, using default: %v"
	MsgGiveawayRespondFail     = "Failed to respond to giv: %v"
	MsgGiveawayFollowupFail    = "Failed to send follow-up error: %v"
	MsgGiveawayAnnounceFail    = "Failed to fetch announcement message: %w"
	MsgGiveawayReactFail       = "Failed to seed entry reaction: %w"
	MsgGiveawayEditFail        = "Failed to mark announcement of %s as ended: %v"
	MsgGiveawayHandlerFailed   = "Giveaway command failed: %v"
	MsgGiveawayRateLimitCancel = "Lookup throttling interrupted: %w"

	// User-facing messages
	ErrGiveawayInvalidDuration  = "⏳ Invalid duration format. Examples: 1h, 30m, 2d"
	ErrGiveawayInvalidWinners   = "The number of winners must be at least 1."
	ErrGiveawayInvalidImage     = "The image must be an http(s) link to an image or GIF."
	ErrGiveawayInvalidPrize     = "The prize cannot be empty."
	ErrGiveawayGeneric          = "❌ Something went wrong, try again later."
	MsgGiveawayNoParticipants   = "❌ No participants, giveaway cancelled!"
	MsgGiveawayWinners          = "🎊 Congratulations %s, you won **%s**! 🎁"
	MsgGiveawayTitle            = "🎉 Giveaway: %s"
	MsgGiveawayDescription      = "React with %s to enter!\n\n*Winners:* **%d**\n\n*Ends in:* **%s** (%s)"
	MsgGiveawayFooter           = "Good luck everyone!"
	MsgGiveawayEndedFooter      = "Ended"
	MsgGiveawayEndedDescription = "*Prize:* **%s**\n\n*Participants:* **%d**"
	MsgGiveawayEndedWinners     = "\n\n*Winners:* %s"
	MsgGiveawayEndedNobody      = "\n\n*No participants.*"
)
