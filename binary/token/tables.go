package token

// singleByteTokens is indexed by wire code. Codes below SingleByteBase are
// reserved for the empty string and packed literal lengths and stay empty.
var singleByteTokens = [Dictionary0]string{
	SingleByteBase: "xmlstreamstart",
	"xmlstreamend", "s.whatsapp.net", "type", "participant", "from", "receipt", "id",
	"notification", "disappearing_mode", "status", "jid", "broadcast", "user", "devices",
	"device_hash", "to", "offline", "message", "result", "class", "xmlns", "duration",
	"notify", "iq", "t", "ack", "g.us", "enc", "urn:xmpp:whatsapp:push", "presence", "config_value",
	"picture", "verified_name", "config_code", "key-index-list", "contact", "mediatype",
	"routing_info", "edge_routing", "get", "read", "urn:xmpp:ping", "fallback_hostname",
	"0", "chatstate", "business_hours_config", "unavailable", "download_buckets", "skmsg",
	"verified_level", "composing", "handshake", "device-list", "media", "text", "fallback_ip4",
	"media_conn", "device", "creation", "location", "config", "item", "fallback_ip6",
	"count", "w:profile:picture", "image", "business", "2", "hostname", "call-creator",
	"display_name", "relaylatency", "platform", "abprops", "success", "msg", "offline_preview",
	"prop", "key-index", "v", "day_of_week", "pkmsg", "version", "1", "ping", "w:p", "download",
	"video", "set", "specific_hours", "props", "primary", "unknown", "hash", "commerce_experience",
	"last", "subscribe", "max_buckets", "call", "profile", "member_since_text", "close_time",
	"call-id", "sticker", "mode", "participants", "value",
}

// doubleByteTokens holds the four dictionaries selected by Dictionary0..3.
// The position inside a dictionary is the index byte on the wire.
var doubleByteTokens = [DictionaryCount][]string{
	{
		"query", "profile_options", "open_time", "code", "list", "host", "ts", "contacts",
		"upload", "lid", "preview", "update", "usync", "w:stats", "delivery", "auth_ttl",
		"context", "fail", "cart_enabled", "appdata", "category", "atn", "direct_connection",
		"decrypt-fail", "relay_id", "mmg-fallback.whatsapp.net", "target", "available", "name",
		"last_id", "mmg.whatsapp.net", "categories", "401", "is_new", "index", "tctoken",
		"ip4", "token_id", "latency", "recipient", "edit", "ip6", "add", "thumbnail-document",
		"26", "paused", "true", "identity", "stream:error", "key", "sidelist", "background",
		"audio", "3", "thumbnail-image", "biz-cover-photo", "cat", "gcm", "thumbnail-video",
		"error", "auth", "deny", "serial", "in", "registration", "thumbnail-link", "remove",
		"00", "gif", "thumbnail-gif", "tag", "capability", "multicast", "item-not-found",
		"description", "business_hours", "config_expo_key", "md-app-state", "expiration",
		"fallback", "ttl", "300", "md-msg-hist", "device_orientation", "out", "w:m", "open_24h",
		"side_list", "token", "inactive", "01", "document", "te2", "played", "encrypt", "msgr",
		"hide", "direct_path", "12", "state", "not-authorized", "url", "terminate", "signature",
		"status-revoke-delay", "02", "te", "linked_accounts", "trusted_contact", "timezone",
		"ptt", "kyc-id", "privacy_token", "readreceipts", "appointment_only", "address", "expected_ts",
		"privacy", "7", "android", "interactive", "device-identity", "enabled", "attribute_padding",
		"1080", "03", "screen_height", "read-self", "active", "fbns", "protocol", "reaction",
		"screen_width", "heartbeat", "deviceid", "2:47DEQpj8", "uploadfieldstat", "voip_settings",
		"retry", "priority", "longitude", "conflict", "false", "ig_professional", "replaced",
		"preaccept", "cover_photo", "uncompressed", "encopt", "ppic", "04", "passive", "status-revoke-drop",
	},
	{
		"reject", "dirty", "announcement", "020", "13", "9", "status_video_max_bitrate", "participating",
		"latitude", "w:gp2", "subject", "creator", "admin", "superadmin", "invite", "leave",
		"promote", "demote", "locked", "restrict", "ephemeral", "modify", "membership_approval_mode",
		"request", "w:g2", "linked_parent", "community", "parent", "default_sub_group", "allow_non_admin_sub_group_creation",
		"incognito", "growth_locked", "size", "creation_time", "accept", "revoke", "invisible",
		"voip", "encrypt_v2", "elapsed", "sender_reactions", "urn:xmpp:whatsapp:dirty", "urn:xmpp:whatsapp:account",
		"urn:xmpp:whatsapp:mms", "urn:xmpp:whatsapp:sync", "group_info", "question_answers",
		"silent", "queue", "phash", "offer", "relaylatency_v2", "call_offer", "accept_v2",
		"transport", "net_medium", "rte", "uploadfieldstat_v2", "keygen", "rekey", "video_enabled",
		"audio_enabled",
	},
	{
		"64", "ptt_playback_speed_enabled", "web_product_list_message_enabled", "w:biz", "biz_account",
		"biz_profile", "catalog", "product", "product_list", "collection", "cart", "order",
		"payment", "payment_method", "currency", "amount", "price", "sale_price", "retailer_id",
		"availability", "review_status", "web_product_detail_enabled", "catalog_status", "link_preview",
		"groups_v2", "group_notification", "invite_code", "invite_expiration", "membership_requests",
		"approval", "pending_participants", "parent_group_jid", "sub_group", "linked_groups",
		"community_announcement", "allow_admin_reports", "reports", "report_type",
	},
	{
		"1724", "profile_picture", "1071", "1314", "1605", "407", "990", "1710", "1188", "1300",
		"1432", "1508", "1722", "1828", "2021", "2064", "2170", "3072", "4096", "8192", "16384",
		"32768", "65536", "keepalive", "passive_mode", "push_config", "push_name_update",
		"voip_push", "media_upload_v2", "sync_collection", "app_state_sync_key_share", "app_state_version",
		"patch", "snapshot", "mutations", "regular", "regular_low", "regular_high", "critical_block",
		"critical_unblock_low",
	},
}
