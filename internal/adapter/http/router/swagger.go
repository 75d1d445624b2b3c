package router

import (
	"fmt"
	"net/http"
)

func registerSwaggerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/swagger", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/", http.StatusMovedPermanently)
	})

	mux.HandleFunc("/swagger/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, swaggerHTML, "/swagger/openapi.json")
	})

	mux.HandleFunc("/swagger/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(openAPI))
	})
}

const swaggerHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8" />
  <title>Fiat Notification Reconciler API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.onload = function() {
      window.ui = SwaggerUIBundle({
        url: "%s",
        dom_id: "#swagger-ui"
      });
    };
  </script>
</body>
</html>`

const openAPI = `{
  "openapi": "3.0.3",
  "info": {
    "title": "Fiat Notification Reconciler API",
    "description": "Ingests bank-app push notifications from delegated devices, deduplicates them, and reconciles the resulting payment events against pending exchange orders.",
    "version": "1.0.0"
  },
  "paths": {
    "/ingest-notification": {
      "post": {
        "summary": "Ingest a bank push notification",
        "description": "Parses the notification text and stores the payment event. Non-payment or unreadable notifications are reported as IGNORED so the device does not retry; resubmissions of an already-stored event repeat the original accept with duplicate=true and the original id.",
        "security": [
          {
            "DeviceAuth": []
          }
        ],
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "$ref": "#/components/schemas/IngestNotificationRequest"
              }
            }
          }
        },
        "responses": {
          "201": {
            "description": "Notification accepted and stored"
          },
          "200": {
            "description": "Duplicate or ignored notification"
          },
          "400": {
            "description": "Invalid request"
          },
          "401": {
            "description": "Unknown, revoked or badly keyed device"
          },
          "503": {
            "description": "Storage unavailable, safe to retry"
          }
        }
      }
    },
    "/unacknowledged-notifications": {
      "get": {
        "summary": "List notifications not yet acknowledged",
        "description": "Stable order by observedAt then id. Default and maximum page sizes are 50 and 200.",
        "security": [
          {
            "BasicAuth": []
          }
        ],
        "parameters": [
          {
            "name": "limit",
            "in": "query",
            "schema": {
              "type": "integer"
            }
          },
          {
            "name": "order",
            "in": "query",
            "schema": {
              "type": "string",
              "enum": ["asc", "desc"]
            }
          }
        ],
        "responses": {
          "200": {
            "description": "Page of notifications"
          },
          "400": {
            "description": "Invalid paging parameters"
          },
          "401": {
            "description": "Unauthorized"
          }
        }
      }
    },
    "/acknowledge-notification": {
      "post": {
        "summary": "Acknowledge a notification",
        "description": "Marks the notification consumed. Acknowledging an already-acknowledged notification succeeds without changing it.",
        "security": [
          {
            "BasicAuth": []
          }
        ],
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "$ref": "#/components/schemas/AcknowledgeNotificationRequest"
              }
            }
          }
        },
        "responses": {
          "200": {
            "description": "Acknowledged, or already acknowledged"
          },
          "404": {
            "description": "Unknown notification id"
          },
          "401": {
            "description": "Unauthorized"
          }
        }
      }
    },
    "/register-device": {
      "post": {
        "summary": "Register a delegated device",
        "description": "Returns the device key exactly once; only its hash is stored.",
        "security": [
          {
            "BasicAuth": []
          }
        ],
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "$ref": "#/components/schemas/RegisterDeviceRequest"
              }
            }
          }
        },
        "responses": {
          "201": {
            "description": "Device registered"
          },
          "400": {
            "description": "Invalid request"
          },
          "401": {
            "description": "Unauthorized"
          }
        }
      }
    },
    "/revoke-device": {
      "post": {
        "summary": "Revoke a delegated device",
        "description": "Revoking twice succeeds; the device stays locked out.",
        "security": [
          {
            "BasicAuth": []
          }
        ],
        "requestBody": {
          "required": true,
          "content": {
            "application/json": {
              "schema": {
                "$ref": "#/components/schemas/RevokeDeviceRequest"
              }
            }
          }
        },
        "responses": {
          "200": {
            "description": "Device revoked, or already revoked"
          },
          "404": {
            "description": "Unknown device id"
          },
          "401": {
            "description": "Unauthorized"
          }
        }
      }
    }
  },
  "components": {
    "securitySchemes": {
      "BasicAuth": {
        "type": "http",
        "scheme": "basic",
        "description": "Shared internal id and key"
      },
      "DeviceAuth": {
        "type": "http",
        "scheme": "basic",
        "description": "Device id as username, device key as password"
      }
    },
    "schemas": {
      "IngestNotificationRequest": {
        "type": "object",
        "required": ["observedAtEpochMs"],
        "properties": {
          "title": {
            "type": "string"
          },
          "content": {
            "type": "string"
          },
          "sourcePackage": {
            "type": "string"
          },
          "observedAtEpochMs": {
            "type": "integer",
            "format": "int64"
          }
        }
      },
      "AcknowledgeNotificationRequest": {
        "type": "object",
        "required": ["notificationId"],
        "properties": {
          "notificationId": {
            "type": "string"
          }
        }
      },
      "RegisterDeviceRequest": {
        "type": "object",
        "required": ["label"],
        "properties": {
          "label": {
            "type": "string"
          }
        }
      },
      "RevokeDeviceRequest": {
        "type": "object",
        "required": ["deviceId"],
        "properties": {
          "deviceId": {
            "type": "string"
          }
        }
      }
    }
  }
}`
