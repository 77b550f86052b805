// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// # Provider Payloads

// The web client forwards the profile object each provider SDK hands it.
// These shapes mirror those SDK payloads; the token exchange has already
// happened on the client.

type googlePayload struct {
	ProfileObj struct {
		GoogleID string `json:"googleId"`
		Email    string `json:"email"`
		ImageURL string `json:"imageUrl"`
		Name     string `json:"name"`
	} `json:"profileObj"`
}

type facebookPayload struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type kakaoPayload struct {
	ID           json.Number `json:"id"`
	KakaoAccount struct {
		Email   string `json:"email"`
		Profile struct {
			Nickname        string `json:"nickname"`
			ProfileImageURL string `json:"profile_image_url"`
		} `json:"profile"`
	} `json:"kakao_account"`
}

type applePayload struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type naverPayload struct {
	Response struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		Name         string `json:"name"`
		Nickname     string `json:"nickname"`
		ProfileImage string `json:"profile_image"`
	} `json:"response"`
}

// facebookPictureURL is the Graph API picture endpoint of a user id.
const facebookPictureURL = "https://graph.facebook.com/v9.0/%s/picture"

/*
NormalizeSNSProfile extracts a provider-agnostic [SNSProfile] from the raw
payload the client received from the provider SDK.

Parameters:
  - snsType: string (provider name as sent by the client)
  - data: json.RawMessage (provider payload)

Returns:
  - SNSProfile: Normalized identity
  - error: UnsupportedProvider or ValidationFailed
*/
func NormalizeSNSProfile(snsType string, data json.RawMessage) (SNSProfile, error) {
	provider := Provider(strings.ToLower(strings.TrimSpace(snsType)))
	if !provider.IsFederated() {
		return SNSProfile{}, ErrUnsupportedProvider
	}

	var profile SNSProfile
	var err error

	switch provider {
	case ProviderGoogle:
		var payload googlePayload
		err = json.Unmarshal(data, &payload)
		profile = SNSProfile{
			ProviderUserID: payload.ProfileObj.GoogleID,
			Email:          payload.ProfileObj.Email,
			DisplayName:    payload.ProfileObj.Name,
			AvatarURL:      payload.ProfileObj.ImageURL,
		}

	case ProviderFacebook:
		var payload facebookPayload
		err = json.Unmarshal(data, &payload)
		profile = SNSProfile{
			ProviderUserID: payload.ID,
			Email:          payload.Email,
			DisplayName:    payload.Name,
		}
		if payload.ID != "" {
			profile.AvatarURL = fmt.Sprintf(facebookPictureURL, url.PathEscape(payload.ID))
		}

	case ProviderKakao:
		var payload kakaoPayload
		err = json.Unmarshal(data, &payload)
		profile = SNSProfile{
			ProviderUserID: payload.ID.String(),
			Email:          payload.KakaoAccount.Email,
			DisplayName:    payload.KakaoAccount.Profile.Nickname,
			AvatarURL:      payload.KakaoAccount.Profile.ProfileImageURL,
		}

	case ProviderApple:
		var payload applePayload
		err = json.Unmarshal(data, &payload)
		profile = SNSProfile{
			ProviderUserID: payload.Sub,
			Email:          payload.Email,
			DisplayName:    payload.Name,
		}

	case ProviderNaver:
		var payload naverPayload
		err = json.Unmarshal(data, &payload)
		displayName := payload.Response.Nickname
		if displayName == "" {
			displayName = payload.Response.Name
		}
		profile = SNSProfile{
			ProviderUserID: payload.Response.ID,
			Email:          payload.Response.Email,
			DisplayName:    displayName,
			AvatarURL:      payload.Response.ProfileImage,
		}
	}

	if err != nil {
		return SNSProfile{}, validationFailed(FieldSNSData, "Malformed provider profile")
	}
	if profile.ProviderUserID == "" {
		return SNSProfile{}, validationFailed(FieldSNSData, "Provider user id is required")
	}

	profile.Provider = provider
	return profile, nil
}
