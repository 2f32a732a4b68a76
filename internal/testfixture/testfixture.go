// Package testfixture holds interoperability fixtures shared by the tests of
// several packages: a recipient key pair, the payload it protects and tokens
// produced by implementations other than this module.
package testfixture

import (
	"crypto/rsa"
	"encoding/base64"
	"math/big"
)

// Payload is the claims JSON protected by the OpenSSL-produced tokens.
const Payload = `{"iss":"https:devgluu.saminet.local","sub":"testing"}`

// RecipientJWK is the encryption key (kid "2"). It carries only n, e and d.
const RecipientJWK = `{"kty":"RSA","d":"jAFM0c4oXxh5YcEujZRVY5LNUzkm0OZf8OUZ31DockQE07BwSAsi4_y6vursS4Z74EurjYlfPx7WoZZokTLyBReVvG8XQZ-AQ5smU9gXQrsiVdU2kOp17oYnOP3OKc0HtvlfTPKdz0DhoA--wAsPFCL2ei4Qly_J3IQTF9ffJJMEyzgabcV1xqrk8NEK5XfEHOdNHzzg-doRe4lCsDcEfIppCIxPHTozhYpwH0_OrssAX1OwX5Jx6-5pXc_BIBrymIkjfwlPYBC32f0iD6VTntJfIngMOdeu0t6krOaWlbfmf6RdoM5sugT-j3mYnd3w4c2eFW23Z9sPCrQvDNlTcQ","e":"AQAB","use":"enc","kid":"2","alg":"RS256","n":"oaPsFKHgVnK0d04rjN5GgZFqCh9HwYkLMdDQDIgkM3x4sxTpctS5NJQK7iKWNxPTtULdzrY6NLqtrNWmIrJFC6f2h4q5p46Kmc8vdhm_Ph_jpYfsXWTdsHAoee6iJPMoie7rBGoscr3y2DdNlyxAO_jHLUkaaSAqDQrH_f4zVTO0XKisJu8DxKoh2U8myOow_kxx4PUxEdlH6XclpxYT5lIZijOZ8wehFad_BAJ2iZM40JDoqOgspUF1Jyq7FjOoMQabYYwDMyfs2rEALcTU1UsvLeWbl95T3mdAw64Ux3uFCZzHdXF4IDr7xH4NrEVT7SMAlwNoaRfmFbtL-WoISw"}`

// SenderJWK is a signing key; it must never be selected for decryption.
const SenderJWK = `{"kty":"RSA","d":"iSx-zxihgOITpEhz6WwGiiCZjxx597wqblhSYgFWa_bL9esLY3FT_Kq9sdvGPiI8QmObRxPZuTi4n3BVKYUWcfjVz3swq7VmESxnJJZE-vMI9NTaZ-CT2b4I-c3qwAsejhWagJf899I3MRtPOnyxMimyOw4_5YYvXjBkXkCMfCsbj5TBR3RbtMrUYzDMXsVT1EJ_7H76DPBFJx5JptsEAA17VMtqwvWhRutnPyQOftDGPxD-1aGgpteKOUCv7Lx-mFX-zV6nnPB8vmgTgaMqCbCFKSZI567p714gzWBkwnNdRHleX8wos8yZAGbdwGqqUz5x3iKKdn3c7U9TTU7DAQ","e":"AQAB","use":"sig","kid":"1","alg":"RS256","n":"i6tdK2fREwykTUU-qkYkiSHgg9B31-8EjVCbH0iyrewY9s7_WYPT7I3argjcmiDkufnVfGGW0FadtO3br-Qgk_N2e9LqGMtjUoGMZKFS3fJhqjnLYDi_E5l2FYU_ilw4EXPsZJY0CaM7BxjwUBoCjopYrgvtdxA9G6gpGoAH4LopAkgX-gkawVLpB4NpLvA09FLF2OlYZL7aaybvM2Lz_IXEPa-LSOwLum80Et-_A1-YMx_Z767Iwl1pGTpgZ87jrDD1vEdMdiLcWFG3UIYAAIxtg6X23cvQVLMaXKpyV0USDCWRJrZYxEDgZngbDRj3Sd2-LnixPkMWAfo_D9lBVQ"}`

// RecipientP and RecipientQ are the prime factors of the recipient modulus,
// recovered offline from (n, e, d).
const (
	RecipientP = "1392302938277051715386445133969358811415593491953042207101007831182637720841894995709236228999845135" +
		"8985199741977547870914794213365561070491002698211757096826249298054897159508758863946352331792025288" +
		"2726963426776862262685914256658808823932998403474776640779368286111726231093698397800839766694466038" +
		"419587097"
	RecipientQ = "1465571865364135622284406835663168138977568455485281079526985798894644503135308591767530512825882559" +
		"0226789046703423139375926491532864714665811806684054709977097684113615115230633832277561208198929812" +
		"8433016844792493352508810447505752296036908130493201348903202591352740372746541153940619078147114565" +
		"419124739"
)

// LegacyGluuToken was issued by a Gluu 3.1.2 server (RSA-OAEP, A128GCM,
// kid "2"). Its encrypted key unwraps to LegacyGluuCEK, but its tag does not
// authenticate the encoded header that the token carries.
const LegacyGluuToken = "eyJ0eXAiOiJKV1QiLCJhbGciOiJSU0EtT0FFUCIsImVuYyI6IkExMjhHQ00iLCJraWQiOiIyIn0.M9YXhzGlMBxJRFjpIZ3ybfNO" +
		"DALPz_08WADIpWSLHOoCBdwqPWQ3fwDf-uaiw7wyTTf9piuKVUOeYHnPE6C_EmS9gj5fmckHBCHcNxZanobT0QXZdy-64wb4GK3a" +
		"r66lPPFnJMVLLCqZfUjB1gHxmAcwrVJQTUPO0ogk2nZCujp4mOuJ0QnOQmJ0R1rHTjbYmKBDySIavmkXosoJaLZI4N1CltCKj66P" +
		"_XKYLfgAE0yevuwtNxkkRc2EGMyPpZ8pVjBL5TPQF3b5AyAstUvB4l6o90JZQLzvAdHJyGuCW1zwzGPBtVBVYvb2vBBAuj7EPKDU" +
		"9UQDuDoklwj5Hwc6wg.qBM-41MJ46_eUv4I.mak_e28_onSOODjdH06wWuA0MfJMTGConWSekPIArQoFKAgcxVRvg-JNqjaBFaG4" +
		"ck8cp0ViAke_Cbfl4AyN-gAFI2pqEMiXkoEB193SyD6Yev0P1zKTJORWS6tpznYAGYgIPh_rWyWPFSdT1WPB7Qgzarf-JNYrNe5H" +
		"_P8JRrArWyCEJx4w6_WLcGnM1EQQPkThoYC4utS47W0OHf2SNr-PRUhCeoEIuoMaQUmjYq386BjCWhQEoQCZNftUjUXZBq8MepW9" +
		"2v1spNLCb7NTEJ1p3s45KIVwPt5qnXI6-ouQE4_KFXVNe5-SSfyzrEf1jxTyerNqlU5bIZ0v4aPS6i3bXSSHIfgyvrFCzDPq9x-5" +
		"B98OI0sVDKxzzp7UWjqEjjmuQbdN4eGZUtSGYcWNFI29vl4Pr8HvqMjnQaaEtGZeX_nJG27xzlwlD1pI_rjO_QMAQpfbNuxLm5-H" +
		"hB0fZOngjNAnOhipyY_tTMMtiWLmoJUuicwTTSpERC_9ny8tnsiyCOEJEyeZFEzh52jfox_WHLVkIrjCUCYtTwCvuYdtu4Sgl-WP" +
		"Ca2y-4uF7u2DcIKdIRRMdjgE1RNUAp-W2ui8PDrIaSVxkWbuLQJ2oXEyWN8gFHEZPko-n80IjGG8Si3Qh1kum_vO9Ub7AiIm0pk6" +
		"5ph_CQH0BSVSLwN-e4iAd1C6h_J2O-aGEKWKrvvRC31ApCr5RkOdaKTAYVGUKQSMBdqucq47JbBynP7dqE0Kxl3miBo_dyYXCim9" +
		"Gw.DSoXCEJ7-uT7Xv7eb3g-7A"

// LegacyGluuCEK is the hex content encryption key inside LegacyGluuToken.
const LegacyGluuCEK = "038a6d96e6feb8e1d14f2700dd4b056a"

// OpenSSLTokenA128GCM was assembled with the openssl CLI (RSA-OAEP key
// transport, AES-128 GCM) over Payload for RecipientJWK.
const OpenSSLTokenA128GCM = "eyJhbGciOiJSU0EtT0FFUCIsImVuYyI6IkExMjhHQ00iLCJ0eXAiOiJKV1QiLCJraWQiOiIyIn0.V1RydyN-NL9mXR8ldV6DLnk_" +
		"MMelRaPEQ0dnXylIA_1fUJs2gBFA3ZsOWKAfc8-Prj67JqB4xJXFB8iphbqBjq57i7Xz7mm50n4qeAUIiHtNKpmiJNupmsmOf0Co" +
		"UPdg8oEm2-qt-2uMJL8gKx0a7iktSbcFaESK-uMzz8cb5gR52I4eYeL9ahvtUsRg08ItuYuCERlvsh0mVqjOeC1adiGa39mxXX9p" +
		"Ga_npe6SIj_9R4YfYhpB5SS4dk_5kthdBDtT1SxMXkc1pNHJ3WjN_g1yWyQ2JTF5dsQBX7uH3giVH2VdO7QzEkCTYcnZ9JTsiuGU" +
		"fDjmInQtOIo1hlsogA.tlCLxjneFnYOmxbx.5hpmvNaDxXpVkKdauF_dqwqRaRxQT44vvGrJ9utd1consWE3l0UQk8DdT0e2bVXV" +
		"62s8MWI.w71azuvUNC5cxWtYqSDujQ"

// OpenSSLTokenA256GCM was assembled with the openssl CLI (RSA-OAEP-256 key
// transport, AES-256 GCM) over Payload for RecipientJWK.
const OpenSSLTokenA256GCM = "eyJhbGciOiJSU0EtT0FFUC0yNTYiLCJlbmMiOiJBMjU2R0NNIiwidHlwIjoiSldUIiwia2lkIjoiMiJ9.Wk4NwBAW4e2AfJCNKCs" +
		"4JibpiKQndH99zh9I7mnlAQbZotez3d54ysdfx2KuruInTG5sH1ChNwFNJrNQmLIoy3J4Q2z5_d62nUrAP5mbVsO9dMryoH3kmdm" +
		"WwsPl5NU7ZiIYU18cEJTT1D-7fnPAWJseb7sWTALDpY7WZiK3zPBREp7pXkcu7Uia7Q6jXqnI1uiZgfHWrz3LlyWCZGMib812pB7" +
		"YOcQG8tTqZTw_mVMtTpYCoaltze8-7Je52n0_QlR439EL1UyzLnbA8Jyla36rdYh6Gk0MLfSoevDWOIEu2y07GxZ7N-9VJ3IC0yF" +
		"NQ553579xkdsXLFv9VPvCKw.pgdq7kEopvfwQLay.x9A05M5aWm4vvzCaHLcA4-3FMYE_AT13i4L3ggFILvOQGEpzpE941BWN10M" +
		"ohcenG2X0PPo.I_WYpo5k_dDAYnMr0KgE_Q"

const (
	recipientN = "oaPsFKHgVnK0d04rjN5GgZFqCh9HwYkLMdDQDIgkM3x4sxTpctS5NJQK7iKWNxPTtULdzrY6NLqtrNWmIrJFC6f2h4q5p46Kmc8v" +
		"dhm_Ph_jpYfsXWTdsHAoee6iJPMoie7rBGoscr3y2DdNlyxAO_jHLUkaaSAqDQrH_f4zVTO0XKisJu8DxKoh2U8myOow_kxx4PUx" +
		"EdlH6XclpxYT5lIZijOZ8wehFad_BAJ2iZM40JDoqOgspUF1Jyq7FjOoMQabYYwDMyfs2rEALcTU1UsvLeWbl95T3mdAw64Ux3uF" +
		"CZzHdXF4IDr7xH4NrEVT7SMAlwNoaRfmFbtL-WoISw"
	recipientD = "jAFM0c4oXxh5YcEujZRVY5LNUzkm0OZf8OUZ31DockQE07BwSAsi4_y6vursS4Z74EurjYlfPx7WoZZokTLyBReVvG8XQZ-AQ5sm" +
		"U9gXQrsiVdU2kOp17oYnOP3OKc0HtvlfTPKdz0DhoA--wAsPFCL2ei4Qly_J3IQTF9ffJJMEyzgabcV1xqrk8NEK5XfEHOdNHzzg" +
		"-doRe4lCsDcEfIppCIxPHTozhYpwH0_OrssAX1OwX5Jx6-5pXc_BIBrymIkjfwlPYBC32f0iD6VTntJfIngMOdeu0t6krOaWlbfm" +
		"f6RdoM5sugT-j3mYnd3w4c2eFW23Z9sPCrQvDNlTcQ"
)

// RecipientKey rebuilds the recipient private key including its CRT values.
func RecipientKey() *rsa.PrivateKey {
	key := &rsa.PrivateKey{
		PublicKey: rsa.PublicKey{
			N: b64Int(recipientN),
			E: 65537,
		},
		D:      b64Int(recipientD),
		Primes: []*big.Int{decInt(RecipientP), decInt(RecipientQ)},
	}
	key.Precompute()
	return key
}

func b64Int(s string) *big.Int {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return new(big.Int).SetBytes(b)
}

func decInt(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("testfixture: invalid integer")
	}
	return n
}
